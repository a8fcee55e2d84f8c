package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/user/isoplot_go/internal/convert"
)

// App struct
type App struct {
	log  *logrus.Logger
	opts convert.Options
}

// NewApp creates a new App with the given options.
func NewApp(log *logrus.Logger, opts convert.Options) *App {
	return &App{log: log, opts: opts}
}

func (a *App) sendStatus(message string) {
	a.log.Info(message)
}

// resolvePaths applies the positional defaults: the built-in header path and
// a curve file named after the header.
func resolvePaths(args []string) (string, string) {
	headerPath := convert.DefaultHeaderPath
	if len(args) > 0 {
		headerPath = args[0]
	}
	curvePath := convert.CurvePathFor(headerPath)
	if len(args) > 1 {
		curvePath = args[1]
	}
	return headerPath, curvePath
}

// HandleConvert runs a conversion and reports progress and the outcome.
func (a *App) HandleConvert(headerPath, curvePath string) error {
	a.sendStatus(fmt.Sprintf("Request: header=[%s], curves=[%s], format=%s", headerPath, curvePath, a.opts.Format))

	res, err := convert.New(a.opts, a.log).Convert(headerPath, curvePath)
	if err != nil {
		return err
	}

	a.sendStatus(fmt.Sprintf("Converted %d blocks: %d charts in %s, %d skipped.",
		len(res.Blocks), len(res.Images), res.OutDir, res.Skipped))
	return nil
}
