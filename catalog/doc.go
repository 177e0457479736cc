// Package catalog holds the declarative model tables for the hosted
// endpoints this module exposes. Each table entry is a [node.Spec]; the
// generic executor in package node runs them all. Adding a model is adding
// an entry here.
package catalog
