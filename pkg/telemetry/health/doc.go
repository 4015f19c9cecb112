// Package health reports evaluator and system health.
//
// The Checker snapshots every loaded evaluator's health on demand and can
// run on a cron schedule so the evaluator_healthy gauge stays current
// between requests.
package health
