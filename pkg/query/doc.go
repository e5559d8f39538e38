// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package query renders diagnostic query templates.
//
// Templates use jinja syntax (pongo2). Besides plain variables, templates can
// branch on the connected server version:
//
//	SELECT
//	{% if version_ge('21.3') %}
//	    formatReadableTimeDelta(uptime())
//	{% else %}
//	    uptime()
//	{% endif %}
//
// version_ge compares component-wise; missing trailing components count as zero.
// Referencing a variable that is not provided is an error rather than an empty
// substitution.
package query
