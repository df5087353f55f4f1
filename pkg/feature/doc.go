// Package feature defines the feature descriptor: one declared unit of
// filesystem intent (install a file, add a user, remove a path, ...)
// expressed purely in terms of the items it provides and the items it
// requires.
//
// The set of feature kinds is a closed sum: each kind is a payload type
// implementing Payload, and new kinds are added by adding a type here,
// never by runtime registration. Features reach the compiler already
// expanded; a request to ensure a whole directory chain exists has been
// decomposed into one feature per path component by the manifest layer.
//
// Requirements come in two strengths. Ordered requirements force the
// providing feature to run first and become graph edges. Unordered
// requirements only assert that the item exists (and validates) by the
// time the layer is complete, which is what lets a user's home directory
// be created by a feature that itself depends on the user.
package feature
