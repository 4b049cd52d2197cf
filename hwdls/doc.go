// Package hwdls implements a Hierarchical Weighted Damped Least-Squares
// solver for stacks of prioritized, linearized equality task equations
// A·x = y.
//
// Each priority level supplies a task matrix A and a reference rate y,
// both linear in the joint-space variable x. Priority levels are solved
// in order: a level is satisfied as exactly as its task weighting and
// conditioning allow, and every lower-priority level is solved only
// within the nullspace of everything above it. Per-task and per-joint
// importance is expressed through symmetric positive-definite weight
// matrices, and the solver falls back to a damped pseudo-inverse near
// kinematic singularities following Maciejewski and Klein (1988).
//
// The solver computes Jacobians, task residuals, and joint limits from
// nothing itself — callers supply the A and y for each level (typically
// produced by Cartesian, center-of-mass, or joint-limit constraint
// objects evaluated against a kinematic model). hwdls only solves the
// resulting linear system.
package hwdls
