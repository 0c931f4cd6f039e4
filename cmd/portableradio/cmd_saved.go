// ABOUTME: Saved-track list commands
// ABOUTME: Lists, removes and clears tracks persisted while listening
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mwynn/portable-radio/internal/infrastructure/store"
)

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "List saved tracks",
	RunE:  runSavedList,
}

var savedRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove one saved track",
	Args:  cobra.ExactArgs(1),
	RunE:  runSavedRemove,
}

var savedClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all saved tracks",
	RunE:  runSavedClear,
}

func init() {
	savedCmd.AddCommand(savedRemoveCmd)
	savedCmd.AddCommand(savedClearCmd)
}

func openStore() (*store.SQLite, error) {
	if err := loadConfig(); err != nil {
		return nil, err
	}
	return store.Open(settings.Store.Path)
}

func runSavedList(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	tracks, err := s.List()
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no saved tracks yet; press s while playing to save one")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATION\tARTIST\tTITLE\tALBUM\tYEAR\tSAVED")
	for _, t := range tracks {
		year := ""
		if t.Year != 0 {
			year = strconv.Itoa(t.Year)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Station, t.Artist, t.Title, t.Album, year, t.SavedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runSavedRemove(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id: %s", args[0])
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	return s.Remove(id)
}

func runSavedClear(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	tracks, err := s.List()
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "delete all %d saved tracks? [y/N] ", len(tracks))
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	if strings.TrimSpace(strings.ToLower(answer)) != "y" {
		fmt.Fprintln(cmd.OutOrStdout(), "aborted")
		return nil
	}

	return s.Clear()
}
