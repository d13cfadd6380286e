package cmd

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/c9s/xfactor/pkg/batch"
	"github.com/c9s/xfactor/pkg/factorconfig"
	"github.com/c9s/xfactor/pkg/style"
)

func init() {
	TransformCmd.Flags().String("input", "", "input csv file, overrides input.file of the config")
	TransformCmd.Flags().String("output", "", "output file, overrides output.file of the config. defaults to stdout")
	TransformCmd.Flags().String("format", "", "output format: csv, tsv or table")

	if err := viper.BindPFlags(TransformCmd.Flags()); err != nil {
		log.WithError(err).Errorf("failed to bind transform flags")
	}

	RootCmd.AddCommand(TransformCmd)
}

var TransformCmd = &cobra.Command{
	Use:          "transform",
	Short:        "compute the configured factors over a csv table",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}

		input := viper.GetString("input")
		if input == "" {
			input = config.Input.File
		}
		if input == "" {
			return errors.New("input file is required, use --input or input.file")
		}

		tbl, err := batch.ReadCSVFile(input, batch.Options{
			TimeColumn:     config.Input.TimeColumn,
			CategoryColumn: config.Input.CategoryColumn,
		})
		if err != nil {
			return err
		}

		outputs, err := transformTable(config, tbl)
		if err != nil {
			return err
		}

		outputFile := viper.GetString("output")
		if outputFile == "" {
			outputFile = config.Output.File
		}

		format := viper.GetString("format")
		if format == "" {
			format = config.Output.Format
		}
		format = outputFormat(format, outputFile)

		if err := writeOutputs(outputFile, format, outputs); err != nil {
			return err
		}

		log.Infof("transformed %d factors over %d rows from %s", len(outputs), len(tbl.Rows), input)
		return nil
	},
}

func loadConfig() (*factorconfig.Config, error) {
	configFile := viper.GetString("config")
	if configFile == "" {
		return nil, errors.New("--config is required")
	}

	config, err := factorconfig.Load(configFile)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load config %s", configFile)
	}
	return config, nil
}

// transformTable runs every factor over tbl with a fresh holder.
func transformTable(config *factorconfig.Config, tbl *batch.Table) ([]*batch.Output, error) {
	factors, err := config.BuildFactors()
	if err != nil {
		return nil, err
	}

	useCategory := tbl.Category != ""

	var outputs []*batch.Output
	for _, f := range factors {
		out, err := batch.Transform(f.Holder, tbl, batch.TransformOptions{
			Name:        f.Name,
			UseCategory: useCategory,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "factor %s", f.Name)
		}

		log.Debugf("factor %s: %d output rows", f.Name, len(out.Rows))
		outputs = append(outputs, out)
	}

	return outputs, nil
}

// outputFormat falls back to the output file extension, then csv.
func outputFormat(format, outputFile string) string {
	if format != "" {
		return strings.ToLower(format)
	}

	if strings.EqualFold(filepath.Ext(outputFile), ".tsv") {
		return "tsv"
	}
	return "csv"
}

func writeOutputs(outputFile, format string, outputs []*batch.Output) error {
	if outputFile == "" {
		return renderOutputs(os.Stdout, format, outputs)
	}

	if format == "table" {
		f, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		defer f.Close()
		return renderOutputs(f, format, outputs)
	}

	writer, err := batch.NewWriterFile(outputFile, format == "tsv")
	if err != nil {
		return err
	}

	if err := writer.WriteOutputs(outputs...); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

func renderOutputs(w io.Writer, format string, outputs []*batch.Output) error {
	switch format {
	case "csv":
		return batch.WriteCSV(w, outputs...)
	case "tsv":
		return batch.WriteTSV(w, outputs...)
	case "table":
		renderOutputTable(w, outputs)
		return nil
	}
	return errors.Errorf("unsupported output format %q", format)
}

func renderOutputTable(w io.Writer, outputs []*batch.Output) {
	tw := style.NewTable(w, nil, table.Row{"time", "category", "factor", "value"})
	for _, o := range outputs {
		for _, row := range o.Rows {
			tw.AppendRow(table.Row{row.Time.Format(batch.TimeFormat), row.Category, o.Name, style.FormatValue(row.Value)})
		}
	}
	tw.Render()
}
