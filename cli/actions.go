package cli

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"go.viam.com/calibeval/chessboard"
	"go.viam.com/calibeval/config"
	"go.viam.com/calibeval/dataset"
	"go.viam.com/calibeval/evaluation"
	"go.viam.com/calibeval/referenceframe"
	"go.viam.com/calibeval/rimage/transform"
	"go.viam.com/calibeval/utils"
)

// LatticeAction prints the point counts of a pattern's lattice and optionally writes its point sets.
func LatticeAction(c *cli.Context) error {
	p := chessboard.NewPattern(c.Int(flagX), c.Int(flagY), c.Float64(flagSize))
	p.Subdivisions = c.Int(flagSubdivisions)
	p.Factor = c.Int(flagFactor)
	lattice, err := chessboard.NewLattice(p)
	if err != nil {
		return err
	}

	stepX, stepY := p.Steps()
	printf(c.App.Writer, "pattern %dx%d, square size %g, steps (%g, %g)", p.CountX, p.CountY, p.SquareSize, stepX, stepY)
	printf(c.App.Writer, "evaluation points: %d", lattice.Evaluation.Len())
	printf(c.App.Writer, "limit points: %d", lattice.Limit.Len())
	printf(c.App.Writer, "interior points: %d", lattice.Interior.Len())

	if out := c.String(flagOut); out != "" {
		if err := dataset.WriteChessboards(out, lattice.Document()); err != nil {
			return err
		}
		printf(c.App.Writer, "wrote %s", out)
	}
	return nil
}

// ChessboardAction resolves the pattern pose of every collection and writes the chessboard document.
func ChessboardAction(c *cli.Context) error {
	logger, closeLogger := newLogger(c)
	defer goutils.UncheckedErrorFunc(closeLogger)
	cfg := &config.Config{}
	if path := c.String(flagConfig); path != "" {
		var err error
		if cfg, err = config.Read(path); err != nil {
			return err
		}
	}
	path := cfg.TestDataset
	if c.IsSet(flagDataset) {
		path = c.String(flagDataset)
	}
	if path == "" {
		return errors.Errorf("a dataset is required, set --%s or --%s", flagDataset, flagConfig)
	}
	notDetected, err := policyFlag(c, flagOnPatternNotDetected, cfg.OnPatternNotDetected)
	if err != nil {
		return err
	}
	solveFailure, err := policyFlag(c, flagOnSolveFailure, cfg.OnSolveFailure)
	if err != nil {
		return err
	}

	d, err := dataset.Load(path)
	if err != nil {
		return err
	}
	lattice, err := datasetLattice(c, d, cfg.Subdivisions)
	if err != nil {
		return err
	}
	resolver := chessboard.NewPoseResolver(
		lattice,
		transform.NewPlanarPoseSolver(logger.Sublogger("solver")),
		referenceframe.DefaultChainComposer,
		chessboard.PoseResolverConfig{OnPatternNotDetected: notDetected, OnSolveFailure: solveFailure},
		logger,
	)
	doc, err := resolver.Resolve(d)
	if err != nil {
		return err
	}
	out := c.String(flagOut)
	if err := dataset.WriteChessboards(out, doc); err != nil {
		return err
	}
	printf(c.App.Writer, "resolved %d of %d collections, wrote %s", len(doc.Collections), len(d.Collections), out)
	return nil
}

// EvaluateAction evaluates every calibration result against the test dataset and prints the report.
func EvaluateAction(c *cli.Context) error {
	logger, closeLogger := newLogger(c)
	defer goutils.UncheckedErrorFunc(closeLogger)
	cfg, err := evaluateConfig(c)
	if err != nil {
		return err
	}

	test, err := dataset.Load(cfg.TestDataset)
	if err != nil {
		return err
	}
	lattice, err := datasetLattice(c, test, cfg.Subdivisions)
	if err != nil {
		return err
	}
	results, err := evaluation.LoadResultSets(cfg.Results, nil)
	if err != nil {
		return err
	}

	evaluator := evaluation.NewEvaluator(
		lattice,
		transform.NewPlanarPoseSolver(logger.Sublogger("solver")),
		evaluation.Config{
			FirstSensor:    cfg.FirstSensor,
			SecondSensor:   cfg.SecondSensor,
			OnSolveFailure: cfg.OnSolveFailure,
		},
		logger,
	)
	report, err := evaluator.Evaluate(test, results)
	if err != nil {
		return err
	}
	if _, err := report.WriteTo(c.App.Writer); err != nil {
		return err
	}
	printf(c.App.Writer, "collections: %v", report.Accepted())

	if cfg.Output.JSON != "" {
		if err := report.WriteJSON(cfg.Output.JSON); err != nil {
			return err
		}
		logger.Infow("wrote report", "path", cfg.Output.JSON)
	}
	if cfg.Output.Plot != "" {
		if err := evaluation.SaveScatter(report, cfg.Output.Plot); err != nil {
			return err
		}
		logger.Infow("wrote plot", "path", cfg.Output.Plot)
	}
	return nil
}

// evaluateConfig reads the --config file, if any, and applies the flags over it.
func evaluateConfig(c *cli.Context) (*config.Config, error) {
	cfg := &config.Config{}
	if path := c.String(flagConfig); path != "" {
		var err error
		if cfg, err = config.Read(path); err != nil {
			return nil, err
		}
	}
	for flag, field := range map[string]*string{
		flagTestDataset:  &cfg.TestDataset,
		flagFirstSensor:  &cfg.FirstSensor,
		flagSecondSensor: &cfg.SecondSensor,
		flagJSON:         &cfg.Output.JSON,
		flagPlot:         &cfg.Output.Plot,
	} {
		if c.IsSet(flag) {
			*field = c.String(flag)
		}
	}
	if c.IsSet(flagOnSolveFailure) {
		cfg.OnSolveFailure = utils.FailurePolicy(c.String(flagOnSolveFailure))
	}
	if c.IsSet(flagSubdivisions) {
		cfg.Subdivisions = c.Int(flagSubdivisions)
	}
	for _, s := range c.StringSlice(flagResult) {
		rc, err := config.ParseResult(s)
		if err != nil {
			return nil, err
		}
		cfg.Results = append(cfg.Results, rc)
	}
	if err := cfg.Process(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// policyFlag returns the policy set by the flag, or fallback when the flag is not set.
func policyFlag(c *cli.Context, name string, fallback utils.FailurePolicy) (utils.FailurePolicy, error) {
	if !c.IsSet(name) {
		return utils.ParseFailurePolicy(string(fallback))
	}
	p, err := utils.ParseFailurePolicy(c.String(name))
	if err != nil {
		return "", errors.Wrapf(err, "--%s", name)
	}
	return p, nil
}

// datasetLattice builds the lattice of the pattern a dataset was captured with. The --subdivisions flag
// wins over the configured value, which wins over the default.
func datasetLattice(c *cli.Context, d *dataset.Dataset, configured int) (*chessboard.Lattice, error) {
	p, err := chessboard.PatternFromDataset(d.CalibrationConfig.CalibrationPattern)
	if err != nil {
		return nil, err
	}
	switch {
	case c.IsSet(flagSubdivisions):
		p.Subdivisions = c.Int(flagSubdivisions)
	case configured > 0:
		p.Subdivisions = configured
	}
	return chessboard.NewLattice(p)
}
