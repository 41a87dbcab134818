// Package lens models camera lens distortion and builds the coordinate maps
// that remove it.
//
// A DistortionModel pairs a 3x3 camera matrix K with the Brown-Conrady
// coefficients (k1, k2, p1, p2[, k3[, k4, k5, k6]]), where k4..k6 form the
// denominator of the rational radial model. Points are normalized with K⁻¹
// before distortion and projected back with K afterwards.
//
// The forward model has no closed-form inverse. Undistort and UndistortPoints
// start from the distorted point and refine it for a fixed five iterations,
// which converges for the distortion magnitudes of ordinary lenses.
//
// Rectification runs the other way: for each pixel of the corrected output
// the map stores where that pixel's ray hits the distorted source, so the
// forward model is what InitUndistortRectifyMap evaluates.
package lens
