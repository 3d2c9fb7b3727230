/*
Package sandbox runs JavaScript page scripts against a headless document.

# Overview

Each Runtime wraps a goja VM with an isolated global scope:

  - document: addEventListener, querySelector, querySelectorAll,
    getElementById, backed by a dom.Document
  - element proxies: tagName, id, className, textContent, getAttribute,
    addEventListener
  - console.log/info/warn/error and alert, forwarded to a page.Host
  - window, aliasing the global object

require, process, module and exports are undefined. setTimeout and
setInterval are inert.

# Listeners

Listeners registered by a script are bridged into the document's registry
and stay callable after Execute returns, so the host can fire
DOMContentLoaded and clicks later. Each callback runs under the runtime lock
with the configured timeout. Errors thrown by callbacks are collected and
returned by Errors.

# Usage Example

	rt, err := sandbox.New(sandbox.DefaultConfig())
	if err != nil {
		return err
	}
	defer rt.Close()

	win := dom.NewWindow(logger)
	if _, err := rt.Execute(ctx, script, doc, win); err != nil {
		return err
	}
	_ = doc.FireContentLoaded()

# Pooling

Pool keeps pre-built runtimes. Release resets the VM, which detaches every
listener the previous script registered.
*/
package sandbox
