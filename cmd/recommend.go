package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"healthnudge/internal/clix"
	"healthnudge/internal/models"
)

// recommendCmd represents the recommend command
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Get a health nudge for a location",
	Long: `Searches venues around the given coordinate, flags the first unhealthy
one and prints healthier alternatives with a short nudge message.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get app from context: %w", err)
		}

		req, err := clix.ParseLocation(cmd.Flags(), appInstance.Config.Search.DefaultRadiusMeters)
		if err != nil {
			return err
		}

		result, err := appInstance.RecommendationService.Recommend(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("recommendation failed: %w", err)
		}

		printResult(result)
		if result.Status == models.StatusErrored {
			return fmt.Errorf("pipeline errored: %s", result.ErrorDetail)
		}
		return nil
	},
}

func printResult(result *models.RecommendationResult) {
	switch result.Status {
	case models.StatusNoVenuesFound:
		fmt.Println(color.YellowString(result.Message))
		return
	case models.StatusAllHealthy:
		fmt.Println(color.GreenString(result.Message))
		if len(result.NearbyVenues) > 0 {
			fmt.Println("\nNearby venues:")
			for _, v := range result.NearbyVenues {
				line := "  - " + v.Name
				if v.Rating != nil {
					line += fmt.Sprintf(" (%.1f)", *v.Rating)
				}
				fmt.Println(line)
			}
		}
		return
	case models.StatusErrored:
		fmt.Println(color.RedString("Recommendation failed: " + result.ErrorDetail))
		return
	}

	if result.Trigger != nil {
		label := color.GreenString("spotted")
		if result.Trigger.IsUnhealthy {
			label = color.RedString("unhealthy")
		}
		fmt.Printf("Trigger venue: %s (%s, %s)\n", result.Trigger.Name, result.Trigger.CategoryName, label)
	}

	if len(result.Alternatives) > 0 {
		fmt.Println("\nHealthier alternatives:")
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Name", "Category", "Distance", "Rating", "Price"})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, alt := range result.Alternatives {
			ratingText := "n/a"
			if alt.Venue.Rating != nil {
				ratingText = fmt.Sprintf("%.1f", *alt.Venue.Rating)
			}
			table.Append([]string{alt.Venue.Name, alt.CategoryLabel, alt.DistanceText, ratingText, priceText(alt.Venue.PriceTier)})
		}
		table.Render()
	}

	fmt.Println()
	fmt.Println(color.CyanString(result.Message))
}

// priceText renders the directory's 0-4 price tier.
func priceText(tier *int) string {
	if tier == nil {
		return ""
	}
	switch *tier {
	case 0:
		return "Free"
	case 1:
		return "Inexpensive"
	case 2:
		return "Moderate"
	case 3:
		return "Expensive"
	case 4:
		return "Very Expensive"
	}
	return ""
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().Float64("lat", 0, "Latitude of the location")
	recommendCmd.Flags().Float64("lng", 0, "Longitude of the location")
	recommendCmd.Flags().Int("radius", 0, "Search radius in meters (100-5000)")
	recommendCmd.Flags().String("context", "", "Optional free-text context for the message (e.g. 'trying to cut sugar')")
}
