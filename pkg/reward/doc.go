// Package reward implements the per-step reward model used to train the
// autonomous track agent. It exposes [Evaluator], [Snapshot], [Thresholds]
// and the waypoint geometry helpers the model is built on.
package reward
