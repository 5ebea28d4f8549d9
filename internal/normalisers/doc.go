// Package normalisers holds the Normaliser implementations, which turn a
// loaded source file into the text the engine stages operate on.
package normalisers
