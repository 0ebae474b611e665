// Package calculator implements an embeddable expression calculator with
// interchangeable number environments.
//
// The syntax is meant to look like math written in notes, extended with a
// little control flow. "-2^2^n" is the same as "-(2^(2^n))". There is no
// implicit multiplication: "2 x" is an error. Statements separated by ";"
// evaluate in order and the last one gives the result. Assignments persist in
// the calculator's symbol table across evaluations.
//
//	x = 3; y = x^2 + 1
//	if (y > 5) { z = 1 } else z = 2
//	for (i = 0; i < 10; i = i + 1) s = s + i
//	s = "x * 2"; $s + 1
//
// The meaning of numbers and operators belongs to the active Environment.
// The float environment computes in double precision; rational computes
// exactly, approximating transcendental functions to a chosen number of
// digits; complex adds the constant i; fraction keeps fractions as written for
// arithmetic by hand; multivector and conformal evaluate in geometric
// algebras, where "^" is the outer product and "." the left contraction;
// matrix builds matrices from bracketed literals such as "[1, 2; 3, 4]".
//
// Strings and booleans exist in every environment. A string can be executed
// as an expression with the "$" operator or the exec function. Executions
// nest up to a depth limit, and executing a string that is already running is
// a CycleError.
//
// Every error resulting from input has a kind, reported by ErrorKindOf, and
// most have a column, reported by PosOf.
package calculator
