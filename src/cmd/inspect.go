package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	cfg "c2paview/src/configuration"
	"c2paview/src/metaapi"
	"c2paview/src/presenter"
	"c2paview/src/render"
	"c2paview/src/session"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	inspectJSON     bool
	inspectCombined bool
	inspectExpand   bool
	inspectFile     bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <uri|path>",
	Short: "Print the metadata and provenance of one image",
	Long: `Fetch an image's metadata through the metadata service and print it.

With --file the argument is a local path that is uploaded instead of a URI.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print the display model as JSON")
	inspectCmd.Flags().BoolVar(&inspectCombined, "combined", false, "use the single combined metadata call")
	inspectCmd.Flags().BoolVar(&inspectExpand, "expand", false, "show every provenance entry")
	inspectCmd.Flags().BoolVar(&inspectFile, "file", false, "treat the argument as a local file to upload")
	inspectCmd.MarkFlagsMutuallyExclusive("combined", "file")
}

func runInspect(cmd *cobra.Command, args []string) error {
	config, err := cfg.ParseProperties()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(config.LogLevel)

	viewer := session.NewViewer(metaapi.NewClient(config, logger),
		presenter.Options{MapSearchURL: config.Viewer.MapSearchURL}, logger)
	viewer.Subscribe(func(d presenter.Display) {
		logger.WithFields(logrus.Fields{
			"state":              d.State,
			"provenance_loading": d.ProvenanceLoading,
		}).Debug("display updated")
	})

	// A fetch failure is carried by the display and printed like any other state.
	err = load(cmd.Context(), viewer, args[0])
	d := viewer.Snapshot()
	if err != nil && d.State != presenter.StateError {
		return err
	}

	out := cmd.OutOrStdout()
	if inspectJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encode display: %w", err)
		}
	} else if err := render.Text(out, d, inspectExpand); err != nil {
		return err
	}
	if d.State == presenter.StateError {
		return fmt.Errorf("inspect %s failed", args[0])
	}
	return nil
}

func load(ctx context.Context, viewer *session.Viewer, arg string) error {
	switch {
	case inspectFile:
		data, err := os.ReadFile(arg)
		if err != nil {
			return fmt.Errorf("read %s: %w", arg, err)
		}
		return viewer.Upload(ctx, filepath.Base(arg), data)
	case inspectCombined:
		return viewer.LoadCombined(ctx, arg)
	default:
		return viewer.Load(ctx, arg)
	}
}
