// Package automation repeats trials and reduces them.
//
// [RunTrials] is the trial aggregator: independent trials on an errgroup
// worker pool, each with its own random stream, reduced to a [Summary] of the
// energy deltas. [RunSweep] and [RunScenario] drive the aggregator over
// parameter ranges and scripted batches.
package automation
