// Package renderer renders the calculator results as markdown.
package renderer
