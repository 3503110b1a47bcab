// Package plan builds week-ahead departure plans. It walks the next five
// commute days, applies per-day weather forecasts and asks the optimizer
// for the latest safe departure per target arrival. Plans can be exported
// to JSON or CSV.
package plan
