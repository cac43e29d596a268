package storage

import (
	"path"
	"strings"
)

const (
	transcriptionMarker = "_transcription"
	cleanedMarker       = "_cleaned_transcription"
	cleanedSuffix       = "_cleaned"
	textExtension       = ".txt"
)

// OutputName derives the cleaned object name from an input name.
// "call_transcription.txt" becomes "call_cleaned_transcription.txt" and
// "call.txt" becomes "call_cleaned.txt". Any directory part is dropped.
func OutputName(inputName string) string {
	base := strings.TrimSuffix(path.Base(inputName), textExtension)

	if strings.Contains(base, transcriptionMarker) {
		base = strings.ReplaceAll(base, transcriptionMarker, cleanedMarker)
	} else {
		base += cleanedSuffix
	}

	return base + textExtension
}

// OutputKey joins a prefix such as "Diarization-clean/" with the derived output name
func OutputKey(prefix, inputName string) string {
	return prefix + OutputName(inputName)
}

// SidecarKey swaps the .txt extension of an output key for ext, e.g. ".jsonl"
func SidecarKey(outputKey, ext string) string {
	return strings.TrimSuffix(outputKey, textExtension) + ext
}
