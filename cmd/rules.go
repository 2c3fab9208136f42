package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the active classification rule set",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get app from context: %w", err)
		}
		rs := appInstance.RuleSet

		source := "compiled-in defaults"
		if appInstance.RuleStore != nil {
			source = "rule store"
		}
		fmt.Printf("Active rule set (%s):\n\n", source)

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Order", "Category", "Unhealthy", "Keywords"})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for i, rule := range rs.KeywordRules {
			category := rs.Categories[rule.CategoryID]
			unhealthy := ""
			if category.IsUnhealthy {
				unhealthy = "yes"
			}
			table.Append([]string{
				fmt.Sprintf("%d", i+1),
				category.DisplayName,
				unhealthy,
				strings.Join(rule.Keywords, ", "),
			})
		}
		table.Render()

		if len(rs.ExcludedTags) > 0 {
			tags := make([]string, 0, len(rs.ExcludedTags))
			for tag := range rs.ExcludedTags {
				tags = append(tags, tag)
			}
			sort.Strings(tags)
			fmt.Printf("\nExcluded tags: %s\n", strings.Join(tags, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
