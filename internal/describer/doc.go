// Package describer turns scenes into visual descriptions.
//
// For each scene it samples evenly spaced frames from the video, captions
// them with the vision client, and keeps the most informative caption (the
// longest). Captioning failures degrade per scene rather than failing the
// whole pass.
package describer
