// Package fincalc provides two small financial calculators and the pieces
// they share.
//
// The core functionalities include:
//   - Input normalization: free-form text such as "50,00,000" read as numbers,
//     invalid input reading as zero.
//   - Portfolio projection: the yearly value of a capital compounding at a
//     fixed rate with a fixed yearly contribution (see Project).
//   - Startup valuation: a bounded revenue multiple derived from growth and
//     margin, with a narrative and an optional LTV/CAC verdict (see Score).
//   - Exchange rate: a single process-wide rate, resolved once, used to
//     express a valuation in a foreign currency (see RateCell).
//   - Formatting: whole-unit currency strings, with Indian or western
//     grouping and compact K/L/Cr or K/M/B notations (see Format).
//
// Models are pure functions over value types. Fetching the rate lives in the
// fx package, rendering in renderer, and the debounced recompute loop in
// session.
package fincalc
