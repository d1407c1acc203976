// Package acquire retrieves rendered page content for a source URL.
//
// Browser drives a disposable headless Chrome session per page through chromedp, waiting and
// scrolling according to a Readiness policy so that lazily loaded listings are present. HTTP
// fetches static pages without a browser.
package acquire
