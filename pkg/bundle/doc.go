// Package bundle fetches lazily loaded route bundles.
//
// A Loader sits in front of a Source and guarantees that each loader ID is
// fetched at most once at a time: concurrent callers share the in-flight fetch
// and all receive its result. Successful fetches are cached for the lifetime
// of the Loader. Failures are not cached, so the next Load retries.
//
// A caller whose context is cancelled stops waiting, but the fetch itself
// keeps running and fills the cache for later navigations.
//
// # Sources
//
//   - Registry maps loader IDs to in-process LoadFuncs.
//   - DirSource reads "<id>.json" manifests from an fs.FS.
//   - S3Source reads "<prefix><id>.json" manifests from an S3 bucket.
//
// A manifest names the bundle's mount handle and the routes it contributes:
//
//	{
//	    "handle": "account-module",
//	    "routes": [
//	        {"path": "", "pathMatch": "full", "viewId": "account-list"},
//	        {"path": "detail", "pathMatch": "full", "viewId": "account-detail"},
//	        {"path": "**", "redirectTo": ""}
//	    ]
//	}
package bundle
