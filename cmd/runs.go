package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// RunsConfig contains the inputs of the runs mode, which lists and deletes
// archived runs.
type RunsConfig struct {
	storeFile string
	remove    []string
	matching  string
}

var _ Mode = &RunsConfig{}

// ExampleConfig returns an example configuration file.
func (config *RunsConfig) ExampleConfig() string {
	return "The runs mode does not have a non-global config file."
}

// ReadConfig reads a config file and returns an error, if applicable.
func (config *RunsConfig) ReadConfig(fname string) error {
	if fname != "" {
		return fmt.Errorf("The runs mode does not have a non-global config " +
			"file, but I was given %s.", fname)
	}
	return nil
}

// BindFlags registers the runs mode's flags.
func (config *RunsConfig) BindFlags(c *cobra.Command) {
	c.Flags().StringVar(&config.storeFile, "store", "",
		"SQLite file to read (defaults to the global StoreFile)")
	c.Flags().StringSliceVar(&config.remove, "delete", nil,
		"IDs of runs to delete")
	c.Flags().StringVar(&config.matching, "hash", "",
		"only list runs with this parameter hash")
}

// Run executes the runs mode.
func (config *RunsConfig) Run(
	ctx context.Context, gConfig *GlobalConfig, e *Env,
) ([]string, error) {
	st, err := gConfig.OpenStore(config.storeFile)
	if err != nil { return nil, err }
	defer st.Close()

	lines := []string{}
	for _, id := range config.remove {
		if err := st.Delete(ctx, id); err != nil { return nil, err }
		lines = append(lines, fmt.Sprintf("# deleted %s", id))
	}

	runs, err := st.List(ctx)
	if err != nil { return nil, err }

	lines = append(lines, "# id name version params_hash rows created")
	for _, r := range runs {
		if config.matching != "" && r.ParamsHash != config.matching { continue }
		lines = append(lines, fmt.Sprintf("%s %s %s %s %s %s", r.ID, r.Name,
			r.Version, r.ParamsHash, humanize.Comma(int64(r.Rows)),
			humanize.Time(r.CreatedAt)))
	}
	return lines, nil
}
