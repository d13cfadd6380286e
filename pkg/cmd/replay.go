package cmd

import (
	"io"
	"math"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/c9s/xfactor/pkg/factorconfig"
	"github.com/c9s/xfactor/pkg/holder"
	"github.com/c9s/xfactor/pkg/style"
	"github.com/c9s/xfactor/pkg/tickstream"
)

func init() {
	ReplayCmd.Flags().String("ticks", "", "newline delimited json tick file, defaults to stdin")
	ReplayCmd.Flags().Bool("color", false, "highlight the tick headings")

	if err := viper.BindPFlags(ReplayCmd.Flags()); err != nil {
		log.WithError(err).Errorf("failed to bind replay flags")
	}

	RootCmd.AddCommand(ReplayCmd)
}

var ReplayCmd = &cobra.Command{
	Use:          "replay",
	Short:        "push a tick stream through the configured factors and print the values of every tick",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}

		factors, err := config.BuildFactors()
		if err != nil {
			return err
		}

		var r io.Reader = os.Stdin
		if ticksFile := viper.GetString("ticks"); ticksFile != "" {
			f, err := os.Open(ticksFile)
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}

		n, err := replay(os.Stdout, factors, tickstream.NewDecoder(r), viper.GetBool("color"))
		if err != nil {
			return err
		}

		log.Infof("replayed %d ticks", n)
		return nil
	},
}

// replay pushes every decoded tick into each factor and renders one table
// per tick: a row per entity, a column per factor.
func replay(w io.Writer, factors []factorconfig.NamedHolder, decoder *tickstream.Decoder, withColor bool) (int, error) {
	header := table.Row{"entity"}
	for _, f := range factors {
		header = append(header, f.Name)
	}

	count := 0
	for {
		tick, err := decoder.Decode()
		if err == io.EOF {
			return count, nil
		} else if err != nil {
			return count, errors.Wrapf(err, "tick #%d", count+1)
		}

		count++

		var lists [][]string
		values := make([]holder.Values, len(factors))
		for i, f := range factors {
			f.Holder.Push(tick)
			values[i] = f.Holder.Value()
			lists = append(lists, f.Holder.SymbolList())
		}
		replayTicksPushedMetrics.Inc()

		style.PrintHeading(w, withColor, "tick #%d", count)

		tw := style.NewTable(w, nil, header)
		for _, name := range holder.UnionSymbols(lists...) {
			row := table.Row{name}
			for _, v := range values {
				row = append(row, style.FormatValue(lookup(v, name)))
			}
			tw.AppendRow(row)
		}
		tw.Render()
	}
}

func lookup(values holder.Values, name string) float64 {
	if v, ok := values[name]; ok {
		return v
	}
	return math.NaN()
}
