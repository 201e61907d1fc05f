// Package storage persists trial reports and sweeps, one directory per run:
//
//	<base>/<run id>/metadata.json   parameters, seed, summary
//	<base>/<run id>/trials.csv      one row per trial
//	<base>/<run id>/perturbed.csv   time, current, velocity of one trial
//	<base>/<run id>/baseline.csv    the matching unperturbed run
//	<base>/<run id>/sweep.csv       one row per swept value (sweeps only)
package storage
