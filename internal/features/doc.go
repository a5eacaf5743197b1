// Package features detects oriented multi-scale keypoints, extracts 256-bit
// binary descriptors for them and matches descriptor sets under Hamming
// distance.
//
// The detector follows the FAST/Harris/rotated-BRIEF recipe: FAST-9 corners
// are found on every level of a scale pyramid, ranked by Harris response,
// oriented by the intensity centroid of their patch and described by
// comparing pairs of smoothed pixels from a fixed, seeded sampling pattern.
// Everything is deterministic: the same image always yields the same
// keypoints and descriptors.
package features
