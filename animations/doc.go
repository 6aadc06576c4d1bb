// Package animations holds the built-in animations. Each subpackage exports
// a Params record, DefaultParams and a Definition ready for animation.New.
package animations
