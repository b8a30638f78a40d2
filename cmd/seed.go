package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mintvault/catalog-cli/internal/model"
)

var seedFile string

type seedDocument struct {
	Entries []seedEntry `yaml:"entries"`
}

type seedEntry struct {
	Name     string `yaml:"name"`
	SetCode  string `yaml:"set_code"`
	Category string `yaml:"category"`
	UPC      string `yaml:"upc"`
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load catalog entries from a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(seedFile)
		if err != nil {
			return eris.Wrapf(err, "read seed file %s", seedFile)
		}

		var doc seedDocument
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return eris.Wrap(err, "parse seed file")
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		created := 0
		for _, e := range doc.Entries {
			if e.Name == "" {
				return eris.Errorf("seed entry %d has no name", created+1)
			}
			if _, err := st.CreateEntry(ctx, model.CatalogEntry{
				Name:     e.Name,
				SetCode:  e.SetCode,
				Category: e.Category,
				UPC:      e.UPC,
			}); err != nil {
				return err
			}
			created++
		}

		fmt.Printf("seeded %d catalog entries\n", created)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "catalog.yaml", "seed file path")
	rootCmd.AddCommand(seedCmd)
}
