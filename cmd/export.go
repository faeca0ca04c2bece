package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"

	"github.com/orchidautomation/playbook-cli/internal/model"
)

var (
	exportRunDir string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a run's email sequences to an XLSX workbook",
	Long: `Reads playbook.json from a run's artifact directory and flattens the
email sequences into one row per touch, ready for import into a sequencer.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := os.ReadFile(filepath.Join(exportRunDir, "playbook.json"))
		if err != nil {
			return eris.Wrap(err, "read playbook.json")
		}

		var pb model.Playbook
		if err := json.Unmarshal(data, &pb); err != nil {
			return eris.Wrap(err, "parse playbook.json")
		}

		f, err := buildEmailWorkbook(&pb)
		if err != nil {
			return err
		}
		if err := f.Save(exportOut); err != nil {
			return eris.Wrap(err, "write workbook")
		}

		cmd.Printf("Exported %d sequences to %s\n", len(pb.EmailSequences), exportOut)
		return nil
	},
}

var emailExportHeader = []string{
	"Persona", "Sequence", "Touch", "Day", "Subject", "Body", "Call To Action", "Personalization Notes",
}

// buildEmailWorkbook flattens the playbook's email sequences into a single
// sheet with one row per touch.
func buildEmailWorkbook(pb *model.Playbook) (*xlsx.File, error) {
	if len(pb.EmailSequences) == 0 {
		return nil, eris.New("playbook has no email sequences")
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Email Sequences")
	if err != nil {
		return nil, eris.Wrap(err, "add sheet")
	}

	header := sheet.AddRow()
	for _, h := range emailExportHeader {
		header.AddCell().Value = h
	}

	for _, seq := range pb.EmailSequences {
		for _, touch := range seq.Touches {
			row := sheet.AddRow()
			row.AddCell().Value = seq.PersonaTitle
			row.AddCell().Value = seq.SequenceName
			row.AddCell().SetInt(touch.TouchNumber)
			row.AddCell().SetInt(touch.Day)
			row.AddCell().Value = touch.Subject
			row.AddCell().Value = touch.Body
			row.AddCell().Value = touch.CallToAction
			row.AddCell().Value = strings.Join(touch.PersonalizationNotes, "; ")
		}
	}

	return f, nil
}

func init() {
	exportCmd.Flags().StringVar(&exportRunDir, "run-dir", "", "run artifact directory containing playbook.json")
	exportCmd.Flags().StringVar(&exportOut, "out", "playbook-emails.xlsx", "output .xlsx path")
	exportCmd.MarkFlagRequired("run-dir") //nolint:errcheck
	rootCmd.AddCommand(exportCmd)
}
