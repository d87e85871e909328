package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"mspro-labs/dining-buddy/internal/config"
	"mspro-labs/dining-buddy/internal/verify"
)

var (
	verifyFile string
	verifyCSV  string
	verifyExp  verify.Expectations
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check saved suggestion text against the dish table",
	Long: `Parses a numbered suggestion list (from --file, or stdin when --file is "-")
and reports the accuracy of each check that has an expected value.

Example:
  dining-buddy verify --file out.txt --location "Franklin Dining Commons" --meal Dinner --allergen Gluten`,
	Run: func(cmd *cobra.Command, args []string) {
		runVerify()
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyFile, "file", "-", "suggestion text file")
	verifyCmd.Flags().StringVar(&verifyCSV, "csv", "", "read the table from this CSV instead of the database")
	verifyCmd.Flags().StringVar(&verifyExp.Location, "location", "", "expected location")
	verifyCmd.Flags().StringVar(&verifyExp.Meal, "meal", "", "expected meal, e.g. Dinner")
	verifyCmd.Flags().StringVar(&verifyExp.Allergen, "allergen", "", "allergen that must be absent")
	verifyCmd.Flags().StringVar(&verifyExp.Diet, "diet", "", "diet that must be present")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify() {
	appCfg, err := config.GetAppConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	var text []byte
	if verifyFile == "-" {
		text, err = io.ReadAll(os.Stdin)
	} else {
		text, err = os.ReadFile(verifyFile)
	}
	if err != nil {
		log.Fatalf("Failed to read suggestions: %v", err)
	}

	rows, err := loadRows(appCfg, verifyCSV)
	if err != nil {
		log.Fatalf("Failed to load dishes: %v", err)
	}

	rep := verify.Check(string(text), rows, verifyExp)
	fmt.Printf("Parsed %d suggestion(s) against %d dishes.\n", len(rep.Claims), len(rows))
	for _, c := range rep.Claims {
		fmt.Printf("  %d. %s\n", c.Position, c.DishName)
	}
	rep.Print(os.Stdout)
}
