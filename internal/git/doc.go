// Package git reads repository history for the content tree: the last
// commit touching each document and the commit the site was built from.
package git
