package selection

import (
	"fmt"
	"strings"

	"github.com/Shaheer-Khan1/AdGenerator/internal/catalog"
)

// renderCatalogListing renders the catalog as the nested, human-readable
// listing the model reasons over. Folder nesting is preserved so the model
// sees organizational context, and the traversal order matches
// Catalog.Flatten for reproducible prompts.
func renderCatalogListing(c *catalog.Catalog) string {
	var b strings.Builder
	for _, name := range c.FolderNames() {
		node, _ := c.Folder(name)
		fmt.Fprintf(&b, "\nFOLDER: %s\n", name)
		renderNode(&b, node, name, 1)
	}
	return b.String()
}

func renderNode(b *strings.Builder, node *catalog.FolderNode, parent string, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, v := range node.Videos {
		fmt.Fprintf(b, "%s- %s (ID: %s)\n", indent, v.Name, v.ID)
	}
	for _, sub := range node.SubfolderNames() {
		fmt.Fprintf(b, "%sSUBFOLDER: %s (inside %s)\n", indent, sub, parent)
		renderNode(b, node.Subfolders[sub], sub, depth+1)
	}
}

// buildPrompt assembles the full model request: transcription, rendered
// listing and the strict response format instructions.
func buildPrompt(transcription, listing string) string {
	var b strings.Builder
	b.WriteString("You are analyzing a voiceover transcription to select exact stock videos.\n\n")
	fmt.Fprintf(&b, "Transcription: %q\n\n", transcription)
	b.WriteString("Available videos by folder:\n")
	b.WriteString(listing)
	b.WriteString(`
Task:
1. Analyze the transcription content and topic.
2. Select the 2-3 most relevant folders.
3. From each folder, choose 2-3 specific videos by their exact names and IDs
   (videos may come from the folder itself or any of its subfolders).
4. If video filenames contain a recurring performer name (e.g. "sarah"),
   prefer videos featuring the same performer.

Respond in this exact format:

FOLDER: FolderName1
VIDEO: exact_video_name.mp4|video_id_1
VIDEO: another_video_name.mp4|video_id_2

FOLDER: FolderName2
VIDEO: video_name.mp4|video_id_3

ACTRESS: performer_name (or "None" if no recurring performer)

Now analyze and select the exact videos:`)
	return b.String()
}
