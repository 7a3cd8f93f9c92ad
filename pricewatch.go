// Package pricewatch tracks product prices on web pages.
// It fetches tracked pages, extracts a single price from each one using
// per-item hints, compares it with the last observed price, and sends a
// daily report.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, rod/).
package pricewatch
