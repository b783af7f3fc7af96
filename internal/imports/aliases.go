package imports

import "strings"

// distributions maps import names to the PyPI distributions providing them,
// for every package whose two names differ.
var distributions = map[string]string{
	"attr":         "attrs",
	"bs4":          "beautifulsoup4",
	"cairo":        "pycairo",
	"Crypto":       "pycryptodome",
	"cv2":          "opencv-python",
	"dateutil":     "python-dateutil",
	"docx":         "python-docx",
	"dotenv":       "python-dotenv",
	"fitz":         "pymupdf",
	"gi":           "pygobject",
	"github":       "pygithub",
	"gitlab":       "python-gitlab",
	"igraph":       "python-igraph",
	"jose":         "python-jose",
	"magic":        "python-magic",
	"mpl_toolkits": "matplotlib",
	"multipart":    "python-multipart",
	"MySQLdb":      "mysqlclient",
	"nacl":         "pynacl",
	"OpenSSL":      "pyopenssl",
	"PIL":          "pillow",
	"pptx":         "python-pptx",
	"psycopg2":     "psycopg2-binary",
	"serial":       "pyserial",
	"skimage":      "scikit-image",
	"sklearn":      "scikit-learn",
	"telegram":     "python-telegram-bot",
	"usb":          "pyusb",
	"wx":           "wxpython",
	"yaml":         "pyyaml",
	"zmq":          "pyzmq",
}

// importNames is the reverse of distributions, keyed by normalized name.
var importNames = make(map[string]string, len(distributions))

func init() {
	for imp, dist := range distributions {
		importNames[Normalize(dist)] = imp
	}
}

// Distribution returns the PyPI distribution installing the given import,
// reducing dotted paths to their root first. Unknown imports map to
// themselves; pip treats names case-insensitively so no folding is needed.
func Distribution(importName string) string {
	root, _, _ := strings.Cut(importName, ".")
	if dist, ok := distributions[root]; ok {
		return dist
	}
	return root
}

// ImportName returns the module a distribution is imported as.
func ImportName(dist string) string {
	norm := Normalize(dist)
	if imp, ok := importNames[norm]; ok {
		return imp
	}
	return strings.ReplaceAll(norm, "-", "_")
}

// Normalize applies PEP 503 name normalization: lowercase with runs of
// ".", "-" and "_" collapsed to a single "-".
func Normalize(dist string) string {
	var b strings.Builder
	b.Grow(len(dist))
	prevDash := false
	for _, r := range strings.ToLower(dist) {
		if r == '.' || r == '-' || r == '_' {
			if !prevDash {
				b.WriteByte('-')
			}
			prevDash = true
			continue
		}
		prevDash = false
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), "-")
}
