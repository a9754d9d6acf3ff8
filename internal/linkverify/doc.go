// Package linkverify checks in-page anchors of rendered HTML: every
// same-page link (href="#id") must point at an element id that exists, and
// ids must be unique.
package linkverify
