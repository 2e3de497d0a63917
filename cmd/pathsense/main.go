// pathsense narrates obstacles in front of a webcam for visually impaired
// users. Every few seconds a frame goes to a vision model and the answer is
// spoken aloud.
//
// Usage:
//
//	export GEMINI_API_KEY=...
//	pathsense                      # run with the default camera
//	pathsense --camera 1 --interval 5s
//	pathsense describe photo.jpg   # one-shot analysis of a still image
//	pathsense config               # print the effective configuration
package main

func main() {
	Execute()
}
