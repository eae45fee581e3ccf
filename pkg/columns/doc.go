// Package columns classifies result columns from sampled row data and casts
// row values into the representation the grid and chart expect.
//
// Classification is deliberately conservative: a column is Numeric or Date
// only when every non-empty sample agrees. Anything else is Text.
package columns
