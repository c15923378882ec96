// Package tree classifies, resolves and orders remote folder entries
// for display.
package tree

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/DarmsTdiuM27/med-drive-bot/pkg/models"
)

// Classify determines how an entry behaves during navigation. A
// shortcut without usable target metadata degrades to a plain file so
// a malformed entry can never break a listing.
func Classify(e models.Entry) models.Kind {
	switch e.MimeType {
	case models.MimeFolder:
		return models.KindFolder
	case models.MimeShortcut:
		if e.Alias == nil || e.Alias.ID == "" {
			return models.KindFile
		}
		if e.Alias.MimeType == models.MimeFolder {
			return models.KindFolderAlias
		}
		return models.KindFileAlias
	default:
		return models.KindFile
	}
}

// Resolve returns the id traversal must use and the name display must
// use. Aliases navigate to their target but keep their own name, so a
// shortcut named "Anatomy (mirror)" opens its target while the
// breadcrumb still reads "Anatomy (mirror)".
func Resolve(e models.Entry) (effectiveID, displayName string) {
	switch Classify(e) {
	case models.KindFolderAlias, models.KindFileAlias:
		return e.Alias.ID, e.Name
	default:
		return e.ID, e.Name
	}
}

var moduleRe = regexp.MustCompile(`(?i)^\s*m(\d+)\b`)

// ModuleNumber extracts the numeric module ordinal from names like
// "M18 Cardiology". ok is false when the name carries no module token.
func ModuleNumber(name string) (int, bool) {
	m := moduleRe.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ModuleLabel returns the canonical "M<n>" tag for a module folder name.
func ModuleLabel(name string) (string, bool) {
	n, ok := ModuleNumber(name)
	if !ok {
		return "", false
	}
	return "M" + strconv.Itoa(n), true
}

// foldName produces the case-insensitive comparison key. Names come
// from user-managed cloud folders, so normalize before folding.
func foldName(name string) string {
	return strings.ToLower(norm.NFC.String(name))
}

// SortFolders orders folder entries for display, in place. At the
// root, names carrying a module token sort by their number ascending
// and come before everything else; the remainder, and all non-root
// listings, sort case-insensitively by name.
func SortFolders(folders []models.Entry, atRoot bool) {
	if !atRoot {
		sortLexical(folders)
		return
	}
	sort.SliceStable(folders, func(i, j int) bool {
		return moduleLess(folders[i].Name, folders[j].Name)
	})
}

// SortFiles orders file entries case-insensitively regardless of level.
func SortFiles(files []models.Entry) {
	sortLexical(files)
}

func sortLexical(entries []models.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return foldName(entries[i].Name) < foldName(entries[j].Name)
	})
}

func moduleLess(a, b string) bool {
	na, oka := ModuleNumber(a)
	nb, okb := ModuleNumber(b)
	if oka != okb {
		return oka
	}
	if oka && na != nb {
		return na < nb
	}
	return foldName(a) < foldName(b)
}

// Partition splits a listing into folder-like and file-like entries,
// preserving input order. Folder aliases count as folders, file
// aliases as files.
func Partition(entries []models.Entry) (folders, files []models.Entry) {
	for _, e := range entries {
		if Classify(e).IsFolder() {
			folders = append(folders, e)
		} else {
			files = append(files, e)
		}
	}
	return folders, files
}

// Arrange partitions and sorts a listing for display: folders first,
// then files, each group ordered by the policy above. The input slice
// is left untouched.
func Arrange(entries []models.Entry, atRoot bool) []models.Entry {
	folders, files := Partition(entries)
	SortFolders(folders, atRoot)
	SortFiles(files)
	return append(folders, files...)
}

// IconForMime picks the display icon for an entry's mime type.
func IconForMime(mime string) string {
	switch {
	case mime == models.MimeFolder:
		return "📁"
	case mime == "application/pdf":
		return "📕"
	case strings.Contains(mime, "document") || strings.Contains(mime, "msword") || strings.Contains(mime, "wordprocessingml"):
		return "📝"
	case strings.Contains(mime, "presentation") || strings.Contains(mime, "powerpoint"):
		return "📊"
	case strings.Contains(mime, "spreadsheet") || strings.Contains(mime, "excel") || strings.Contains(mime, "ms-excel"):
		return "📗"
	default:
		return "📄"
	}
}

// EntryIcon picks the icon for an entry, looking through aliases at
// what they point to.
func EntryIcon(e models.Entry) string {
	switch Classify(e) {
	case models.KindFolder, models.KindFolderAlias:
		return IconForMime(models.MimeFolder)
	case models.KindFileAlias:
		return IconForMime(e.Alias.MimeType)
	default:
		return IconForMime(e.MimeType)
	}
}

// FileLink returns the entry's web link, synthesizing the Drive viewer
// URL when the listing omitted one. File aliases synthesize from their
// target id, which is what the viewer can actually open.
func FileLink(e models.Entry) string {
	if e.WebViewLink != "" {
		return e.WebViewLink
	}
	id := e.ID
	if Classify(e) == models.KindFileAlias {
		id = e.Alias.ID
	}
	return "https://drive.google.com/file/d/" + id + "/view"
}

// PathSeparator joins breadcrumb segments in display paths.
const PathSeparator = " › "

// JoinPath appends a folder name to a display path.
func JoinPath(parent, name string) string {
	return parent + PathSeparator + name
}
