// Package formula implements the vibesheet formula engine. Cell input that
// starts with '=' is parsed into a small typed expression language:
//   - Number, string ("..." with backslash escapes) and boolean literals.
//   - Arithmetic (+ - * /), comparison (== != < <= > >=) and logical (&& ||)
//     operators, with the usual precedence and parentheses for grouping.
//   - Conditionals written `if cond then a else b`; only the chosen branch runs.
//   - Cell references such as A0 or $A$0, and rectangular ranges A0:C3.
//   - Built-in functions: pow, abs, length, concat, sum, min, max, average,
//     count.
//
// Values are BOOLEAN, DOUBLE or STRING. Every evaluation problem, from type
// mismatches to circular references, is reported as a failed Result carrying
// a message rather than as a Go error or panic. A Sheet recomputes formulas
// from scratch on each read and detects cycles among the cells it visits.
package formula
