package deck

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/Vovarama1992/paper2deck/internal/domain"
)

// layoutUnit maps one inch of a 10in-wide layout onto the 13.33in slide.
const layoutUnit = 1219200

func emu(in float64) int64 {
	return int64(in*layoutUnit + 0.5)
}

type box struct {
	x, y, w, h float64
}

type align string

const (
	alignLeft   align = "l"
	alignCenter align = "ctr"
	alignRight  align = "r"
)

type run struct {
	text  string
	size  int
	bold  bool
	color domain.RGB
	font  string
	lang  string
}

type paragraph struct {
	runs  []run
	align align
	rtl   bool
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func (r run) markup() string {
	var b strings.Builder
	lang := r.lang
	if lang == "" {
		lang = "en-US"
	}
	fmt.Fprintf(&b, `<a:r><a:rPr lang="%s" sz="%d"`, lang, r.size*100)
	if r.bold {
		b.WriteString(` b="1"`)
	}
	b.WriteString(` dirty="0">`)
	b.WriteString(`<a:solidFill><a:srgbClr val="` + r.color.Hex() + `"/></a:solidFill>`)
	if r.font != "" {
		f := escape(r.font)
		b.WriteString(`<a:latin typeface="` + f + `"/><a:cs typeface="` + f + `"/>`)
	}
	b.WriteString(`</a:rPr><a:t>` + escape(r.text) + `</a:t></a:r>`)
	return b.String()
}

func (p paragraph) markup() string {
	var b strings.Builder
	b.WriteString(`<a:p><a:pPr algn="` + string(p.align) + `"`)
	if p.rtl {
		b.WriteString(` rtl="1"`)
	}
	b.WriteString(`/>`)
	for _, r := range p.runs {
		b.WriteString(r.markup())
	}
	b.WriteString(`</a:p>`)
	return b.String()
}

// textBox writes a non-placeholder text shape.
func textBox(id int, name string, at box, rtl bool, paras ...paragraph) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`, id, escape(name))
	fmt.Fprintf(&b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:noFill/></p:spPr>`,
		emu(at.x), emu(at.y), emu(at.w), emu(at.h))
	b.WriteString(`<p:txBody><a:bodyPr wrap="square"`)
	if rtl {
		b.WriteString(` rtlCol="1"`)
	}
	b.WriteString(`><a:normAutofit/></a:bodyPr><a:lstStyle/>`)
	for _, p := range paras {
		b.WriteString(p.markup())
	}
	b.WriteString(`</p:txBody></p:sp>`)
	return b.String()
}

// line writes a horizontal connector.
func line(id int, at box, color domain.RGB, widthPt float64) string {
	return fmt.Sprintf(`<p:cxnSp><p:nvCxnSpPr><p:cNvPr id="%d" name="Accent Line"/><p:cNvCxnSpPr/><p:nvPr/></p:nvCxnSpPr>`, id) +
		fmt.Sprintf(`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="0"/></a:xfrm><a:prstGeom prst="line"><a:avLst/></a:prstGeom>`,
			emu(at.x), emu(at.y), emu(at.w)) +
		fmt.Sprintf(`<a:ln w="%d"><a:solidFill><a:srgbClr val="%s"/></a:solidFill></a:ln></p:spPr></p:cxnSp>`, int(widthPt*12700), color.Hex())
}

type slideOpts struct {
	background domain.RGB
	fade       bool
}

func slideXML(opts slideOpts, shapes ...string) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:sld xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">`)
	b.WriteString(`<p:cSld>`)
	b.WriteString(`<p:bg><p:bgPr><a:solidFill><a:srgbClr val="` + opts.background.Hex() + `"/></a:solidFill><a:effectLst/></p:bgPr></p:bg>`)
	b.WriteString(`<p:spTree>` + emptySpTree)
	for _, s := range shapes {
		b.WriteString(s)
	}
	b.WriteString(`</p:spTree></p:cSld>`)
	b.WriteString(`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>`)
	if opts.fade {
		b.WriteString(`<p:transition spd="med"><p:fade/></p:transition>`)
	}
	b.WriteString(`</p:sld>`)
	return b.String()
}

func notesXML(paras ...paragraph) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:notes xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">`)
	b.WriteString(`<p:cSld><p:spTree>` + emptySpTree)
	b.WriteString(`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Notes Placeholder 1"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr>`)
	b.WriteString(`<p:spPr><a:xfrm><a:off x="685800" y="4400550"/><a:ext cx="5486400" cy="3600450"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`)
	b.WriteString(`<p:txBody><a:bodyPr/><a:lstStyle/>`)
	for _, p := range paras {
		b.WriteString(p.markup())
	}
	b.WriteString(`</p:txBody></p:sp>`)
	b.WriteString(`</p:spTree></p:cSld>`)
	b.WriteString(`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>`)
	b.WriteString(`</p:notes>`)
	return b.String()
}
