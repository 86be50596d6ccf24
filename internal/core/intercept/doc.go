// Package intercept implements the license interception core.
//
// A Coordinator holds the state derived from the most recent load request:
// the credentials, the playback policy and, when an SSM endpoint was given,
// the ssm.Session. License requests and responses issued by the player are
// run through TransformRequest and UnpackageLicense with that state.
//
// Request framing:
//
//	no token                 pass through untouched
//	token, no session        nv-authorizations = token
//	session, first request   nv-authorizations = token(), octet-stream
//	session, later requests  POST renewal URL, {"challenge": b64},
//	                         nv-authorizations = renewalToken(), JSON
//
// Nothing here fails across the player boundary except use of a torn-down
// session. Every other failure is handed to a Reporter and the request
// continues on the best available path.
package intercept
