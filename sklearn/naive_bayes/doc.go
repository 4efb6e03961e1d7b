// Package naive_bayes implements the Gaussian Naive Bayes classifier.
//
// GaussianNB models every attribute of every class as an independent normal
// distribution. Fit estimates, per class, the mean and the unbiased (N-1)
// variance of each attribute together with the class prior N_c/N. Predict
// scores each class as
//
//	ln(prior[c]) + Σ_a ln N(x[a]; mean[c][a], variance[c][a])
//
// and returns the class with the highest score. Scores are accumulated in log
// space so that points far from every class mean do not underflow. Classes are
// scanned in ascending order and only a strictly greater score replaces the
// current best, so ties resolve to the lowest class id.
//
// Classes with fewer than two samples and attributes that are constant within
// a class are rejected at fit time with DegenerateClassError and
// ZeroVarianceError. WithVarSmoothing adds a small variance floor for data
// where constant attributes are expected.
//
// Example:
//
//	nb := naive_bayes.NewGaussianNB()
//	if err := nb.FitRows(rows, labels); err != nil {
//	    return err
//	}
//	preds, err := nb.PredictRows([][]float64{{1.5}, {10.5}})
package naive_bayes
