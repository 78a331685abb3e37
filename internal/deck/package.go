package deck

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Vovarama1992/paper2deck/internal/domain"
)

const (
	slideCX = 12192000
	slideCY = 6858000

	notesCX = 6858000
	notesCY = 9144000

	// first slide relationship id in presentation.xml.rels
	slideRIDBase = 7
	slideIDBase  = 256
)

const (
	nsA = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsP = "http://schemas.openxmlformats.org/presentationml/2006/main"

	relBase   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"
	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`
)

// pptxPackage is one deck ready to be zipped. notes is either nil or has
// one entry per slide.
type pptxPackage struct {
	title   string
	palette domain.Palette
	fonts   fontPair
	slides  []string
	notes   []string
	created time.Time
}

type fontPair struct {
	latin string
	cs    string
}

func (p *pptxPackage) hasNotes() bool { return len(p.notes) > 0 }

func (p *pptxPackage) build() ([]byte, error) {
	if len(p.slides) == 0 {
		return nil, fmt.Errorf("deck has no slides")
	}
	if p.hasNotes() && len(p.notes) != len(p.slides) {
		return nil, fmt.Errorf("deck has %d slides but %d notes", len(p.slides), len(p.notes))
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	files := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", p.contentTypesXML()},
		{"_rels/.rels", rootRelsXML()},
		{"docProps/core.xml", p.corePropsXML()},
		{"docProps/app.xml", p.appPropsXML()},
		{"ppt/presentation.xml", p.presentationXML()},
		{"ppt/_rels/presentation.xml.rels", p.presentationRelsXML()},
		{"ppt/presProps.xml", presPropsXML()},
		{"ppt/viewProps.xml", viewPropsXML()},
		{"ppt/tableStyles.xml", tableStylesXML()},
		{"ppt/theme/theme1.xml", themeXML("Deck", p.palette, p.fonts)},
		{"ppt/slideMasters/slideMaster1.xml", slideMasterXML()},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRelsXML()},
		{"ppt/slideLayouts/slideLayout1.xml", slideLayoutXML()},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", slideLayoutRelsXML()},
	}
	if p.hasNotes() {
		files = append(files, []struct {
			name    string
			content string
		}{
			{"ppt/theme/theme2.xml", themeXML("Notes", p.palette, p.fonts)},
			{"ppt/notesMasters/notesMaster1.xml", notesMasterXML()},
			{"ppt/notesMasters/_rels/notesMaster1.xml.rels", notesMasterRelsXML()},
		}...)
	}

	for _, f := range files {
		if err := p.writeZipTextFile(w, f.name, f.content); err != nil {
			return nil, err
		}
	}

	for i, body := range p.slides {
		n := i + 1
		if err := p.writeZipTextFile(w, fmt.Sprintf("ppt/slides/slide%d.xml", n), body); err != nil {
			return nil, err
		}
		if err := p.writeZipTextFile(w, fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), slideRelsXML(n, p.hasNotes())); err != nil {
			return nil, err
		}
		if !p.hasNotes() {
			continue
		}
		if err := p.writeZipTextFile(w, fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", n), p.notes[i]); err != nil {
			return nil, err
		}
		if err := p.writeZipTextFile(w, fmt.Sprintf("ppt/notesSlides/_rels/notesSlide%d.xml.rels", n), notesRelsXML(n)); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// writeZipTextFile pins the entry time to the deck clock so two renders of
// the same input at the same instant are byte-identical.
func (p *pptxPackage) writeZipTextFile(w *zip.Writer, name, content string) error {
	fw, err := w.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: p.created,
	})
	if err != nil {
		return fmt.Errorf("create zip entry %s: %w", name, err)
	}
	if _, err := io.Copy(fw, strings.NewReader(content)); err != nil {
		return fmt.Errorf("write zip entry %s: %w", name, err)
	}
	return nil
}

func (p *pptxPackage) contentTypesXML() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	b.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	if p.hasNotes() {
		b.WriteString(`<Override PartName="/ppt/theme/theme2.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
		b.WriteString(`<Override PartName="/ppt/notesMasters/notesMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.notesMaster+xml"/>`)
	}
	b.WriteString(`<Override PartName="/ppt/presProps.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presProps+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/viewProps.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.viewProps+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/tableStyles.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.tableStyles+xml"/>`)
	for i := 1; i <= len(p.slides); i++ {
		fmt.Fprintf(&b, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i)
		if p.hasNotes() {
			fmt.Fprintf(&b, `<Override PartName="/ppt/notesSlides/notesSlide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"/>`, i)
		}
	}
	b.WriteString(`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`)
	b.WriteString(`<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>`)
	b.WriteString(`</Types>`)
	return b.String()
}

func rootRelsXML() string {
	return xmlHeader +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="` + relBase + `officeDocument" Target="ppt/presentation.xml"/>` +
		`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
		`<Relationship Id="rId3" Type="` + relBase + `extended-properties" Target="docProps/app.xml"/>` +
		`</Relationships>`
}

func (p *pptxPackage) corePropsXML() string {
	ts := p.created.UTC().Format(time.RFC3339)
	return xmlHeader +
		`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:dcmitype="http://purl.org/dc/dcmitype/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dc:title>` + escape(p.title) + `</dc:title>` +
		`<dc:creator>SlideCraft AI</dc:creator>` +
		`<cp:lastModifiedBy>SlideCraft AI</cp:lastModifiedBy>` +
		`<dcterms:created xsi:type="dcterms:W3CDTF">` + ts + `</dcterms:created>` +
		`<dcterms:modified xsi:type="dcterms:W3CDTF">` + ts + `</dcterms:modified>` +
		`</cp:coreProperties>`
}

func (p *pptxPackage) appPropsXML() string {
	n := len(p.slides)
	notes := 0
	if p.hasNotes() {
		notes = n
	}

	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties" xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes">`)
	b.WriteString(`<Application>SlideCraft AI</Application>`)
	b.WriteString(`<PresentationFormat>On-screen Show (16:9)</PresentationFormat>`)
	fmt.Fprintf(&b, `<Slides>%d</Slides><Notes>%d</Notes>`, n, notes)
	b.WriteString(`<HiddenSlides>0</HiddenSlides><MMClips>0</MMClips><ScaleCrop>false</ScaleCrop>`)
	fmt.Fprintf(&b, `<HeadingPairs><vt:vector size="2" baseType="variant"><vt:variant><vt:lpstr>Slide Titles</vt:lpstr></vt:variant><vt:variant><vt:i4>%d</vt:i4></vt:variant></vt:vector></HeadingPairs>`, n)
	fmt.Fprintf(&b, `<TitlesOfParts><vt:vector size="%d" baseType="lpstr">`, n)
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, `<vt:lpstr>Slide %d</vt:lpstr>`, i)
	}
	b.WriteString(`</vt:vector></TitlesOfParts>`)
	b.WriteString(`<AppVersion>16.0000</AppVersion>`)
	b.WriteString(`</Properties>`)
	return b.String()
}

func (p *pptxPackage) presentationXML() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:presentation xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `" saveSubsetFonts="1">`)
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	if p.hasNotes() {
		b.WriteString(`<p:notesMasterIdLst><p:notesMasterId r:id="rId6"/></p:notesMasterIdLst>`)
	}
	b.WriteString(`<p:sldIdLst>`)
	for i := range p.slides {
		fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, slideIDBase+i, slideRIDBase+i)
	}
	b.WriteString(`</p:sldIdLst>`)
	fmt.Fprintf(&b, `<p:sldSz cx="%d" cy="%d"/>`, slideCX, slideCY)
	fmt.Fprintf(&b, `<p:notesSz cx="%d" cy="%d"/>`, notesCX, notesCY)
	b.WriteString(`<p:defaultTextStyle/>`)
	b.WriteString(`</p:presentation>`)
	return b.String()
}

func (p *pptxPackage) presentationRelsXML() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rId1" Type="` + relBase + `slideMaster" Target="slideMasters/slideMaster1.xml"/>`)
	b.WriteString(`<Relationship Id="rId2" Type="` + relBase + `presProps" Target="presProps.xml"/>`)
	b.WriteString(`<Relationship Id="rId3" Type="` + relBase + `viewProps" Target="viewProps.xml"/>`)
	b.WriteString(`<Relationship Id="rId4" Type="` + relBase + `theme" Target="theme/theme1.xml"/>`)
	b.WriteString(`<Relationship Id="rId5" Type="` + relBase + `tableStyles" Target="tableStyles.xml"/>`)
	if p.hasNotes() {
		b.WriteString(`<Relationship Id="rId6" Type="` + relBase + `notesMaster" Target="notesMasters/notesMaster1.xml"/>`)
	}
	for i := range p.slides {
		fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="`+relBase+`slide" Target="slides/slide%d.xml"/>`, slideRIDBase+i, i+1)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func presPropsXML() string {
	return xmlHeader + `<p:presentationPr xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `"/>`
}

func viewPropsXML() string {
	return xmlHeader + `<p:viewPr xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">` +
		`<p:normalViewPr><p:restoredLeft sz="15620"/><p:restoredTop sz="94660"/></p:normalViewPr>` +
		`<p:gridSpacing cx="76200" cy="76200"/>` +
		`</p:viewPr>`
}

func tableStylesXML() string {
	return xmlHeader + `<a:tblStyleLst xmlns:a="` + nsA + `" def="{5C22544A-7EE6-4342-B048-85BDC9FD1C3A}"/>`
}

const clrMap = `<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>`

const emptySpTree = `<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`

func slideMasterXML() string {
	return xmlHeader +
		`<p:sldMaster xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">` +
		`<p:cSld><p:bg><p:bgRef idx="1001"><a:schemeClr val="bg1"/></p:bgRef></p:bg>` +
		`<p:spTree>` + emptySpTree + `</p:spTree></p:cSld>` +
		clrMap +
		`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>` +
		`<p:txStyles><p:titleStyle/><p:bodyStyle/><p:otherStyle/></p:txStyles>` +
		`</p:sldMaster>`
}

func slideMasterRelsXML() string {
	return xmlHeader +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="` + relBase + `slideLayout" Target="../slideLayouts/slideLayout1.xml"/>` +
		`<Relationship Id="rId2" Type="` + relBase + `theme" Target="../theme/theme1.xml"/>` +
		`</Relationships>`
}

func slideLayoutXML() string {
	return xmlHeader +
		`<p:sldLayout xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `" type="blank" preserve="1">` +
		`<p:cSld name="Blank"><p:spTree>` + emptySpTree + `</p:spTree></p:cSld>` +
		`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>` +
		`</p:sldLayout>`
}

func slideLayoutRelsXML() string {
	return xmlHeader +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="` + relBase + `slideMaster" Target="../slideMasters/slideMaster1.xml"/>` +
		`</Relationships>`
}

func notesMasterXML() string {
	return xmlHeader +
		`<p:notesMaster xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">` +
		`<p:cSld><p:bg><p:bgRef idx="1001"><a:schemeClr val="bg1"/></p:bgRef></p:bg>` +
		`<p:spTree>` + emptySpTree + `</p:spTree></p:cSld>` +
		clrMap +
		`</p:notesMaster>`
}

func notesMasterRelsXML() string {
	return xmlHeader +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="` + relBase + `theme" Target="../theme/theme2.xml"/>` +
		`</Relationships>`
}

func slideRelsXML(n int, withNotes bool) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rId1" Type="` + relBase + `slideLayout" Target="../slideLayouts/slideLayout1.xml"/>`)
	if withNotes {
		fmt.Fprintf(&b, `<Relationship Id="rId2" Type="`+relBase+`notesSlide" Target="../notesSlides/notesSlide%d.xml"/>`, n)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func notesRelsXML(n int) string {
	return xmlHeader +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="` + relBase + `notesMaster" Target="../notesMasters/notesMaster1.xml"/>` +
		fmt.Sprintf(`<Relationship Id="rId2" Type="`+relBase+`slide" Target="../slides/slide%d.xml"/>`, n) +
		`</Relationships>`
}

// themeXML carries the deck palette into the scheme colours so text that
// falls back to the theme still matches.
func themeXML(name string, pal domain.Palette, fonts fontPair) string {
	srgb := func(tag string, c domain.RGB) string {
		return `<a:` + tag + `><a:srgbClr val="` + c.Hex() + `"/></a:` + tag + `>`
	}
	fontScheme := func(tag string) string {
		return `<a:` + tag + `><a:latin typeface="` + escape(fonts.latin) + `"/><a:ea typeface=""/><a:cs typeface="` + escape(fonts.cs) + `"/></a:` + tag + `>`
	}
	fill := `<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>`
	lnStyle := `<a:ln w="9525"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>`
	effect := `<a:effectStyle><a:effectLst/></a:effectStyle>`

	return xmlHeader +
		`<a:theme xmlns:a="` + nsA + `" name="` + name + `">` +
		`<a:themeElements>` +
		`<a:clrScheme name="` + name + `">` +
		`<a:dk1><a:srgbClr val="000000"/></a:dk1>` +
		`<a:lt1><a:srgbClr val="FFFFFF"/></a:lt1>` +
		srgb("dk2", pal.Title) +
		srgb("lt2", pal.Background) +
		srgb("accent1", pal.Accent) +
		srgb("accent2", pal.Title) +
		srgb("accent3", pal.Body) +
		`<a:accent4><a:srgbClr val="FFC000"/></a:accent4>` +
		`<a:accent5><a:srgbClr val="5B9BD5"/></a:accent5>` +
		`<a:accent6><a:srgbClr val="70AD47"/></a:accent6>` +
		`<a:hlink><a:srgbClr val="0563C1"/></a:hlink>` +
		`<a:folHlink><a:srgbClr val="954F72"/></a:folHlink>` +
		`</a:clrScheme>` +
		`<a:fontScheme name="` + name + `">` + fontScheme("majorFont") + fontScheme("minorFont") + `</a:fontScheme>` +
		`<a:fmtScheme name="` + name + `">` +
		`<a:fillStyleLst>` + fill + fill + fill + `</a:fillStyleLst>` +
		`<a:lnStyleLst>` + lnStyle + lnStyle + lnStyle + `</a:lnStyleLst>` +
		`<a:effectStyleLst>` + effect + effect + effect + `</a:effectStyleLst>` +
		`<a:bgFillStyleLst>` + fill + fill + fill + `</a:bgFillStyleLst>` +
		`</a:fmtScheme>` +
		`</a:themeElements>` +
		`<a:objectDefaults/><a:extraClrSchemeLst/>` +
		`</a:theme>`
}
