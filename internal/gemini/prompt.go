package gemini

import (
	"fmt"
	"regexp"
	"strings"
)

const formatInstructions = `
FORMAT:
- Markdown.
- English section followed immediately by its Chinese translation for every block.
- Title matches the video.

STRUCTURE:
# [Video Title]
# [Chinese Title]

## 🎬 Visual & Content Summary / 视觉与内容概要
[Detailed paragraph (approx 150 words).
- If this is a Music Video, describe the Visual Plot/Story.
- If Talk/Review/News: Summarize the main arguments and conclusions.]

[Chinese Translation]

## 🗝️ Key Details / 核心细节
* **[Point 1]** - [Chinese Translation]
* **[Point 2]** - [Chinese Translation]
* **[Point 3]** - [Chinese Translation]
* **[Point 4]** - [Chinese Translation]
* **[Point 5]** - [Chinese Translation]

## 📜 Detailed Content Record / 详细内容实录
[Reconstruct the video's content chronologically. Provide a comprehensive
"pseudo-transcript" or narrative record that covers all major sections,
demonstrations, and spoken points in the video. Format this as a series of
detailed paragraphs or a long bulleted list.]

[Chinese Translation of the Detailed Content Record - provide a high-fidelity translation.]

## 💡 Deep Analysis / 深度解析
[Paragraph: Cultural context, technical breakdown, or expert opinion.]

[Chinese Translation]
`

var videoIDPattern = regexp.MustCompile(`(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/)([^"&?/\s]{11})`)

// VideoID extracts the 11 character YouTube video ID from a link.
func VideoID(videoURL string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(videoURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Hints carries optional metadata that sharpens the search step.
type Hints struct {
	Title  string
	Author string
}

// searchQueries suggests queries the model can run to find the content.
func searchQueries(videoURL, videoID string, hints Hints) []string {
	var queries []string
	if hints.Title != "" {
		queries = append(queries,
			strings.TrimSpace(fmt.Sprintf("%q %s full content details", hints.Title, hints.Author)),
			fmt.Sprintf("%q step-by-step breakdown", hints.Title),
			fmt.Sprintf("%q comprehensive review analysis", hints.Title),
			fmt.Sprintf("%q video transcript summary", hints.Title),
		)
	}
	if videoID != "" {
		queries = append(queries,
			fmt.Sprintf("site:youtube.com %q", videoID),
			fmt.Sprintf("%q video detailed content", videoID),
		)
	}
	return append(queries, videoURL)
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func videoPrompt(videoURL string, hints Hints) string {
	videoID, _ := VideoID(videoURL)

	var b strings.Builder
	b.WriteString("You are an Expert Content Analyst and Documentarian.\n\n")
	b.WriteString("TARGET CONTENT:\n")
	fmt.Fprintf(&b, "- URL: %s\n", videoURL)
	fmt.Fprintf(&b, "- ID: %s\n", orUnknown(videoID))
	fmt.Fprintf(&b, "- KNOWN TITLE: %s\n", orUnknown(hints.Title))
	fmt.Fprintf(&b, "- AUTHOR: %s\n\n", orUnknown(hints.Author))
	b.WriteString("YOUR MISSION:\n")
	b.WriteString("Find the *actual content* of this video and record it in extreme detail.\n")
	b.WriteString(`I need a "Detailed Content Record" that acts like a written record of everything that happens in the video.` + "\n\n")
	b.WriteString("INVESTIGATION PLAN (EXECUTE VIA GOOGLE SEARCH):\n")
	b.WriteString("1. **EXECUTE SEARCHES**: Use queries to find transcripts, reviews, or deep-dives into this specific video.\n")
	b.WriteString("2. **RECORD**: Reconstruct the video's sequence as accurately as possible.\n")
	b.WriteString("3. **SYNTHESIZE**: Write a high-fidelity bilingual document.\n\n")
	b.WriteString("SUGGESTED QUERIES:\n")
	for _, q := range searchQueries(videoURL, videoID, hints) {
		fmt.Fprintf(&b, "- %s\n", q)
	}
	b.WriteString(formatInstructions)
	return b.String()
}

func textPrompt(text string) string {
	var b strings.Builder
	b.WriteString("You are a professional research assistant.\n\n")
	b.WriteString("SOURCE TEXT (TRANSCRIPT/CONTENT):\n")
	b.WriteString(text)
	b.WriteString("\n\nGOAL: Provide a detailed record and summary of the provided text.\n")
	b.WriteString(formatInstructions)
	return b.String()
}
