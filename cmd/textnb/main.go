// textnb trains, evaluates and serves Naive Bayes text classifiers from the
// command line.
package main

import (
	"log/slog"
	"os"

	"github.com/YuminosukeSato/textnb/cmd/textnb/cmd"
	"github.com/YuminosukeSato/textnb/pkg/log"
)

func main() {
	if err := cmd.Execute(); err != nil {
		slog.Error("command failed", log.ErrAttr(err))
		os.Exit(1)
	}
}
