// Package sources acquires raw recipe data and turns it into canonical
// recipes. Each source downloads into a local file, so a later run can
// skip the network and reload what is already on disk.
package sources
