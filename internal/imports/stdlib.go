package imports

// IsStdlib reports whether name is a Python standard library top-level module.
func IsStdlib(name string) bool {
	_, ok := stdlib[name]
	return ok
}

// stdlib lists the top-level modules shipped with CPython 3. Modules removed
// in 3.12 (distutils and friends) are kept so older sources still classify
// correctly.
var stdlib = make(map[string]struct{}, len(stdlibNames))

func init() {
	for _, name := range stdlibNames {
		stdlib[name] = struct{}{}
	}
}

var stdlibNames = []string{
	"__future__", "__main__", "abc", "argparse", "array", "ast", "asyncio",
	"atexit", "base64", "binascii", "bisect", "builtins", "bz2", "calendar",
	"cgi", "cmath", "cmd", "codecs", "collections", "colorsys", "concurrent",
	"configparser", "contextlib", "contextvars", "copy", "copyreg", "csv",
	"ctypes", "curses", "dataclasses", "datetime", "decimal", "difflib",
	"dis", "distutils", "doctest", "email", "encodings", "enum", "errno",
	"faulthandler", "fcntl", "filecmp", "fileinput", "fnmatch", "fractions",
	"ftplib", "functools", "gc", "getopt", "getpass", "gettext", "glob",
	"graphlib", "grp", "gzip", "hashlib", "heapq", "hmac", "html", "http",
	"imaplib", "imp", "importlib", "inspect", "io", "ipaddress", "itertools",
	"json", "keyword", "linecache", "locale", "logging", "lzma", "mailbox",
	"marshal", "math", "mimetypes", "mmap", "multiprocessing", "netrc",
	"numbers", "operator", "os", "pathlib", "pdb", "pickle", "pickletools",
	"pkgutil", "platform", "plistlib", "poplib", "posixpath", "pprint",
	"profile", "pstats", "pty", "pwd", "py_compile", "pydoc", "queue",
	"quopri", "random", "re", "readline", "reprlib", "resource", "runpy",
	"sched", "secrets", "select", "selectors", "shelve", "shlex", "shutil",
	"signal", "site", "smtplib", "socket", "socketserver", "sqlite3", "ssl",
	"stat", "statistics", "string", "stringprep", "struct", "subprocess",
	"symtable", "sys", "sysconfig", "syslog", "tarfile", "tempfile",
	"termios", "textwrap", "threading", "time", "timeit", "tkinter", "token",
	"tokenize", "tomllib", "trace", "traceback", "tracemalloc", "tty",
	"types", "typing", "unicodedata", "unittest", "urllib", "uuid", "venv",
	"warnings", "wave", "weakref", "webbrowser", "wsgiref", "xml", "xmlrpc",
	"zipapp", "zipfile", "zipimport", "zlib", "zoneinfo",
}
