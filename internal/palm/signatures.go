package palm

import "io"

// signatureTable maps the 8-byte type/creator pair at bytes [60,68) of the
// primary header to a format label. Labels follow the names the formats are
// commonly distributed under.
var signatureTable = map[string]string{
	".pdfADBE": "Adobe Reader",
	"TEXtREAd": "PalmDOC",
	"BVokBDIC": "BDicty",
	"DB99DBOS": "DB",
	"PNRdPPrs": "eReader",
	"DataPPrs": "eReader",
	"vIMGView": "FireViewer",
	"PmDBPmDB": "HanDBase",
	"InfoINDB": "InfoView",
	"ToGoToGo": "iSilo",
	"SDocSilX": "iSilo 3",
	"JbDbJBas": "JFile",
	"JfDbJFil": "JFile Pro",
	"DATALSdb": "LIST",
	"Mdb1Mdb1": "MobileDB",
	"BOOKMOBI": "Mobipocket",
	"DataPlkr": "Plucker",
	"DataSprd": "QuickSheet",
	"SM01SMem": "SuperMemo",
	"TEXtTlDc": "TealDoc",
	"InfoTlIf": "TealInfo",
	"DataTlMl": "TealMeal",
	"DataTlPt": "TealPaint",
	"dataTDBP": "ThinkDB",
	"TdatTide": "Tides",
	"ToRaTRPW": "TomeRaider",
	"BDOCWrdS": "WordSmith",
	"zTXTGPlm": "zTXT",
}

const mobiSignature = "BOOKMOBI"

// classify looks up the identity signature of a complete primary header.
// The second return reports whether the embedded Mobipocket sub-format
// parser applies.
func classify(header []byte) (string, bool, bool) {
	if len(header) < primaryHeaderSize {
		return "", false, false
	}
	sig := string(header[signatureOffset : signatureOffset+signatureSize])
	label, ok := signatureTable[sig]
	if !ok {
		return "", false, false
	}
	return label, sig == mobiSignature, true
}

// Sniff reports the format label of the container served by r without
// decoding it. Only the primary header is read.
func Sniff(r io.ReaderAt) (string, bool) {
	header, err := readExact(r, 0, primaryHeaderSize)
	if err != nil {
		return "", false
	}
	label, _, ok := classify(header)
	return label, ok
}

// Formats returns the labels of every recognized signature, for callers
// that enumerate supported formats.
func Formats() []string {
	seen := make(map[string]bool, len(signatureTable))
	out := make([]string, 0, len(signatureTable))
	for _, label := range signatureTable {
		if !seen[label] {
			seen[label] = true
			out = append(out, label)
		}
	}
	return out
}
