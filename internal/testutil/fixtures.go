// internal/testutil/fixtures.go
package testutil

// PythonProject returns a small workspace layout: one package under src/,
// one test module, a stray script, files that default excludes must skip,
// and the project metadata files audit and test goals look for.
func PythonProject() map[string]string {
	return map[string]string{
		"src/app/__init__.py":   "",
		"src/app/main.py":       "import os\n",
		"tests/test_main.py":    "def test_ok():\n    assert True\n",
		"scripts/release.py":    "print('release')\n",
		".venv/lib/site.py":     "junk\n",
		"pyproject.toml":        "[project]\nname = \"app\"\n",
		"uv.lock":               "version = 1\n",
		"docs/conf.py.template": "ignored\n",
	}
}
