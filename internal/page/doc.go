/*
Package page implements the page bootstrapper that attaches to the student
records web page.

# Overview

The bootstrapper runs once per page load, when the document's structure is
ready (DOMContentLoaded). It:

 1. Logs a developer diagnostic ("Flask project loaded successfully!")
 2. Looks up the first element matching ".add-student-btn"
 3. If found, registers a click listener that shows the
    "Add Student functionality coming soon!" notice

A missing hook element is not an error: the bootstrapper simply skips the
listener.

# Hosts

The package only depends on the small Document, Element and Host interfaces.
Two hosts implement them:

  - browser: syscall/js bindings, compiled into main.wasm (js && wasm only)
  - dom: a headless goquery-backed document used by the server and tests

# Usage Example

	boot := page.New(host)
	boot.Install(doc)

	// later, once the host fires DOMContentLoaded
	fmt.Println(boot.State()) // attached or skipped
*/
package page
