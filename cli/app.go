// Package cli contains the calibeval command line application.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"

	"go.viam.com/calibeval/chessboard"
)

const (
	// Global flags.
	flagDebug   = "debug"
	flagLogFile = "log-file"

	// Lattice flags.
	flagX            = "x"
	flagY            = "y"
	flagSize         = "size"
	flagSubdivisions = "subdivisions"
	flagFactor       = "factor"
	flagOut          = "out"

	// Chessboard and evaluate flags.
	flagConfig               = "config"
	flagDataset              = "dataset"
	flagTestDataset          = "test-dataset"
	flagResult               = "result"
	flagFirstSensor          = "first-sensor"
	flagSecondSensor         = "second-sensor"
	flagOnSolveFailure       = "on-solve-failure"
	flagOnPatternNotDetected = "on-pattern-not-detected"
	flagJSON                 = "json"
	flagPlot                 = "plot"
)

var subdivisionsFlag = &cli.IntFlag{
	Name:  flagSubdivisions,
	Usage: "number of segments each lattice gap is split into for the limit and interior points",
	Value: chessboard.DefaultSubdivisions,
}

var configFlag = &cli.StringFlag{
	Name:    flagConfig,
	Aliases: []string{"c"},
	Usage:   "load the evaluation configuration from `FILE`; flags override its fields",
}

var app = &cli.App{
	Name:            "calibeval",
	Usage:           "evaluate the extrinsic calibration of camera pairs against chessboard detections",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    flagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
		&cli.StringFlag{
			Name:  flagLogFile,
			Usage: "also write logs to `FILE`, rotated past 64 MB",
		},
	},
	Commands: []*cli.Command{
		{
			Name:  "lattice",
			Usage: "generate the reference point lattice of a chessboard pattern",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     flagX,
					Usage:    "number of inner corners along x",
					Required: true,
				},
				&cli.IntFlag{
					Name:     flagY,
					Usage:    "number of inner corners along y",
					Required: true,
				},
				&cli.Float64Flag{
					Name:     flagSize,
					Usage:    "square edge length in meters",
					Required: true,
				},
				subdivisionsFlag,
				&cli.IntFlag{
					Name:  flagFactor,
					Usage: "number of lattice cells per square along each axis",
					Value: 1,
				},
				&cli.StringFlag{
					Name:  flagOut,
					Usage: "write the point sets to `FILE`",
				},
			},
			Action: LatticeAction,
		},
		{
			Name:  "chessboard",
			Usage: "resolve the pose of the pattern in every collection of a dataset",
			Flags: []cli.Flag{
				configFlag,
				&cli.StringFlag{
					Name:  flagDataset,
					Usage: "dataset `FILE` holding the detections; defaults to the configured test dataset",
				},
				&cli.StringFlag{
					Name:  flagOut,
					Usage: "write the chessboard document to `FILE`",
					Value: "chessboards.json",
				},
				&cli.StringFlag{
					Name:  flagOnPatternNotDetected,
					Usage: "abort or skip when no camera detected the pattern in a collection",
				},
				&cli.StringFlag{
					Name:  flagOnSolveFailure,
					Usage: "abort, or skip to the next camera, when a pose solve does not converge",
				},
				subdivisionsFlag,
			},
			Action: ChessboardAction,
		},
		{
			Name:  "evaluate",
			Usage: "compare calibration results by projecting pattern points from one camera into the other",
			UsageText: "calibeval evaluate [--config FILE] --test-dataset FILE --result name:representation:path " +
				"[--result ...] --first-sensor NAME --second-sensor NAME",
			Flags: []cli.Flag{
				configFlag,
				&cli.StringFlag{
					Name:  flagTestDataset,
					Usage: "ground-truth dataset `FILE` holding the detections",
				},
				&cli.StringSliceFlag{
					Name:  flagResult,
					Usage: "calibration result as name:representation:path, representation one of chain, direct or pattern_poses",
				},
				&cli.StringFlag{
					Name:  flagFirstSensor,
					Usage: "camera whose detections are projected",
				},
				&cli.StringFlag{
					Name:  flagSecondSensor,
					Usage: "camera the detections are projected into",
				},
				&cli.StringFlag{
					Name:  flagOnSolveFailure,
					Usage: "abort or skip when the pattern pose cannot be solved in a collection",
				},
				subdivisionsFlag,
				&cli.StringFlag{
					Name:  flagJSON,
					Usage: "write the report as JSON to `FILE`",
				},
				&cli.StringFlag{
					Name:  flagPlot,
					Usage: "write a scatter plot of the errors to `FILE` (.png, .svg or .pdf)",
				},
			},
			Action: EvaluateAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
