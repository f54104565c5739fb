package linear

// Option is a function that configures LinearRegression
type Option func(*LinearRegression)

// WithFitIntercept sets whether to calculate the intercept
func WithFitIntercept(fit bool) Option {
	return func(lr *LinearRegression) {
		lr.fitIntercept = fit
	}
}

// WithRcond sets the relative cutoff below which singular values are treated as zero.
// A negative value selects eps * max(n_samples, n_features).
func WithRcond(rcond float64) Option {
	return func(lr *LinearRegression) {
		lr.rcond = rcond
	}
}

// ElasticNetOption is a function that configures ElasticNet
type ElasticNetOption func(*ElasticNet)

// WithAlpha sets the constant that multiplies the penalty terms
func WithAlpha(alpha float64) ElasticNetOption {
	return func(en *ElasticNet) {
		en.alpha = alpha
	}
}

// WithL1Ratio sets the mixing parameter (0 = ridge penalty, 1 = lasso penalty)
func WithL1Ratio(ratio float64) ElasticNetOption {
	return func(en *ElasticNet) {
		en.l1Ratio = ratio
	}
}

// WithMaxIter sets the maximum number of coordinate descent sweeps
func WithMaxIter(n int) ElasticNetOption {
	return func(en *ElasticNet) {
		en.maxIter = n
	}
}

// WithTol sets the tolerance for the duality gap stopping rule
func WithTol(tol float64) ElasticNetOption {
	return func(en *ElasticNet) {
		en.tol = tol
	}
}

// WithENFitIntercept sets whether to calculate the intercept (ElasticNet)
func WithENFitIntercept(fit bool) ElasticNetOption {
	return func(en *ElasticNet) {
		en.fitIntercept = fit
	}
}
