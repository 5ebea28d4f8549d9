// Package services runs the build and check pipelines behind the driving
// ports. It reaches tools, files and caches only through driven ports.
package services
