package cli_test

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/linecrop/test/integration/cli/support"
	"github.com/cucumber/godog"
)

// testContext holds the global test context.
var testContext *support.TestContext

// InitializeScenario sets up the test context for each scenario.
func InitializeScenario(sc *godog.ScenarioContext) {
	var err error
	testContext, err = support.NewTestContext()
	if err != nil {
		panic(fmt.Sprintf("Failed to create test context: %v", err))
	}

	// Register step definitions
	testContext.RegisterCommandSteps(sc)
	testContext.RegisterFileSteps(sc)

	// Setup scenario cleanup
	sc.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		if cleanupErr := testContext.Cleanup(); cleanupErr != nil {
			fmt.Printf("Warning: Failed to cleanup test context: %v\n", cleanupErr)
		}
		return ctx, nil
	})
}

// TestFeatures runs every feature file as its own subtest. GODOG_FORMAT and
// GODOG_TAGS select the formatter and filter scenarios.
func TestFeatures(t *testing.T) {
	features, err := filepath.Glob(filepath.Join("features", "*.feature"))
	if err != nil {
		t.Fatalf("failed to list features: %v", err)
	}
	if len(features) == 0 {
		t.Fatal("no .feature files found in features/")
	}

	opts := godog.Options{
		Format: cmp.Or(os.Getenv("GODOG_FORMAT"), "pretty"),
		Tags:   os.Getenv("GODOG_TAGS"),
		Strict: true,
	}

	for _, feature := range features {
		t.Run(filepath.Base(feature), func(t *testing.T) {
			o := opts
			o.Paths = []string{feature}
			o.TestingT = t

			suite := godog.TestSuite{
				Name:                "linecrop",
				ScenarioInitializer: InitializeScenario,
				Options:             &o,
			}
			if status := suite.Run(); status != 0 {
				t.Fatalf("feature %s finished with status %d", feature, status)
			}
		})
	}
}
