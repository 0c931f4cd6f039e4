// ABOUTME: Station listing command
// ABOUTME: Shows the configured registry with feed and polling details
package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "List configured stations",
	RunE:  runStations,
}

func runStations(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tLOCATION\tFEED\tPOLL")
	for _, st := range stations.Stations {
		feed := "yes"
		if st.Feedless() {
			feed = "no"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", st.ID, st.Name, st.Location, feed, st.PollInterval())
	}
	return w.Flush()
}
