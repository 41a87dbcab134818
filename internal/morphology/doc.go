// Package morphology provides distance transforms and structuring elements
// for binary images.
//
// DistanceTransform treats zero pixels as features and every other pixel as
// background. Structuring elements are the binary kernels used by erosion and
// dilation.
package morphology
