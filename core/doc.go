// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

/*
Package core holds the types shared by the rollout and the providers that
carry it out.

Packages under core must not import any other package of this module, nor
any cloud SDK. A provider translates its own errors and results into core
types; the rollout only ever sees those.
*/
package core
