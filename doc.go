// Package regeval evaluates linear regression models on Stata datasets.
//
// The module ships two commands:
//
//   - regeval: loads a .dta (or .dta.xz) table, drops rows with missing
//     values, fits ordinary least squares and a Lasso (ElasticNet with
//     l1_ratio=1), prints in-sample metrics and 5-fold cross-validation R²
//     scores.
//   - countdown: prints 1..N on a single terminal line.
//
// # Installation
//
//	go install github.com/tpalab/regeval/cmd/regeval@latest
//
// # Quick Start
//
// With TPA_12_full.dta in the working directory:
//
//	$ regeval
//	explained_variance:  0.6124
//	mean_squared_log_error:  0.0031
//	...
//
// Settings are read from ./regeval.yml, a .env file and REGEVAL_*
// environment variables, in that order of increasing precedence:
//
//	dataset:
//	  path: data/TPA_13_full.dta.xz
//	cv:
//	  seed: 12345
//	plot:
//	  dir: plots
//
// # Library use
//
//	tbl, err := dataset.Load("TPA_12_full.dta")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	X, y, features, err := dataset.DefaultDesign().Build(tbl.DropNA())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg := config.Default()
//	_, err = evaluate.Run(ctx, &cfg, X, y, features,
//	    evaluate.DefaultSpecs(cfg.ElasticNet), report.New(os.Stdout))
//
// # Packages
//
//   - dataset, dataset/stata: Stata reader, in-memory tables, design matrices
//   - linear: LinearRegression (SVD least squares) and ElasticNet (coordinate descent)
//   - metrics: regression metrics (explained variance, MSLE, R², MAE, MSE, RMSE)
//   - model_selection: KFold and CrossValScore
//   - report: Python-compatible formatting of results
//   - evaluate: the fit, report and cross-validate pipeline
//   - plot: optional diagnostic charts
//   - config: viper based configuration
//   - core/model: estimator interfaces and fitted-state handling
//   - pkg/errors, pkg/log: structured errors, warnings and logging
package regeval
