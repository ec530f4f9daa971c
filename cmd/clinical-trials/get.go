// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/clinical-trials/pkg/types"
)

var getCmd = &cobra.Command{
	Use:   "get <nct-id>",
	Short: "Retrieve one trial by NCT ID and export it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		return s.get(contextOf(cmd), args[0])
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func (s *session) get(ctx context.Context, nctID string) error {
	t, err := s.lookup(ctx, nctID)
	if err != nil {
		return err
	}
	files, err := s.exporter.ExportTrials([]types.Trial{t}, s.format, "trial_"+fileSafe(t.NCTID))
	if err != nil {
		return fmt.Errorf("exporting trial: %w", err)
	}
	printTrial(s, t)
	s.printFiles(files)
	return nil
}

// lookup fetches a trial, turning a miss into an error for the command.
func (s *session) lookup(ctx context.Context, nctID string) (types.Trial, error) {
	t, ok := s.client.Get(ctx, nctID)
	if !ok {
		return types.Trial{}, fmt.Errorf("trial %s not found", strings.TrimSpace(nctID))
	}
	if t.NCTID == "" {
		t.NCTID = strings.TrimSpace(nctID)
	}
	return t, nil
}

func printTrial(s *session, t types.Trial) {
	fmt.Fprintf(s.out, "Trial: %s\n", t.NCTID)
	fmt.Fprintf(s.out, "  Title: %s\n", t.BriefTitle)
	fmt.Fprintf(s.out, "  Status: %s\n", t.Status)
	fmt.Fprintf(s.out, "  Phase: %s\n", t.PhaseLabel())
	if len(t.Interventions) > 0 {
		names := make([]string, len(t.Interventions))
		for i, iv := range t.Interventions {
			names[i] = iv.Name
		}
		fmt.Fprintf(s.out, "  Interventions: %s\n", strings.Join(names, ", "))
	}
}
