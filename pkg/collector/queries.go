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

package collector

import (
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/client"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/defaults"
)

// Template variables available to queries and commands.
const (
	VarNormalizeQueries = "normalize_queries"
	VarDataPath         = "data_path"
	VarErrorLog         = "error_log"
	VarServerLog        = "server_log"
)

// Fallbacks used when the server configuration cannot be read.
const (
	DefaultDataPath  = "/var/lib/clickhouse/"
	DefaultErrorLog  = "/var/log/clickhouse-server/clickhouse-server.err.log"
	DefaultServerLog = "/var/log/clickhouse-server/clickhouse-server.log"
)

// Section names.
const (
	SectionAccess      = "Access"
	SectionSchema      = "Schema"
	SectionReplication = "Replication"
	SectionDetached    = "Detached data"
	SectionQueries     = "Queries"
	SectionService     = "Service"
	SectionHost        = "Host"
	SectionLogs        = "Logs"
)

// CrashLogTable gates the crash log step.
const CrashLogTable = "crash_log"

const (
	selectSystemTables = `SELECT name FROM system.tables WHERE database = 'system'`

	selectUptime = `{% if version_ge('21.3') -%}
SELECT formatReadableTimeDelta(uptime())
{%- else -%}
SELECT
    toString(floor(uptime() / 3600 / 24)) || ' days ' ||
    toString(floor(uptime() % (24 * 3600) / 3600, 1)) || ' hours'
{%- endif %}`

	selectUptimeSeconds = `SELECT uptime()`

	selectDatabaseEngines = `SELECT
    engine,
    count() "count"
FROM system.databases
GROUP BY engine`

	selectDatabases = `SELECT
    name,
    engine,
    tables,
    partitions,
    parts,
    formatReadableSize(bytes_on_disk) "disk_size"
FROM system.databases db
LEFT JOIN
(
    SELECT
        database,
        uniq(table) "tables",
        uniq(table, partition) "partitions",
        count() AS parts,
        sum(bytes_on_disk) "bytes_on_disk"
    FROM system.parts
    WHERE active
    GROUP BY database
) AS db_stats ON db.name = db_stats.database
ORDER BY bytes_on_disk DESC
LIMIT 10`

	selectTableEngines = `SELECT
    engine,
    count() "count"
FROM system.tables
WHERE database != 'system'
GROUP BY engine`

	selectDictionaries = `SELECT
    source,
    type,
    status,
    count() "count"
FROM system.dictionaries
GROUP BY source, type, status
ORDER BY status DESC, source`

	selectAccess = `SHOW ACCESS`

	selectQuotaUsage = `SHOW QUOTA`

	selectReplicas = `SELECT
    database,
    table,
    is_leader,
    is_readonly,
    absolute_delay,
    queue_size,
    inserts_in_queue,
    merges_in_queue
FROM system.replicas
ORDER BY absolute_delay DESC
LIMIT 10`

	selectReplicationQueue = `SELECT
    database,
    table,
    replica_name,
    position,
    node_name,
    type,
    source_replica,
    parts_to_merge,
    new_part_name,
    create_time,
    required_quorum,
    is_detach,
    is_currently_executing,
    num_tries,
    last_attempt_time,
    last_exception,
    concat('time: ', toString(last_postpone_time), ', number: ', toString(num_postponed), ', reason: ', postpone_reason) postpone
FROM system.replication_queue
ORDER BY create_time ASC
LIMIT 20`

	selectReplicatedFetches = `SELECT
    database,
    table,
    round(elapsed, 1) "elapsed",
    round(100 * progress, 1) "progress",
    partition_id,
    result_part_name,
    result_part_path,
    total_size_bytes_compressed,
    bytes_read_compressed,
    source_replica_path,
    source_replica_hostname,
    source_replica_port,
    interserver_scheme,
    to_detached,
    thread_id
FROM system.replicated_fetches`

	selectPartsPerTable = `SELECT
    database,
    table,
    count() "partitions",
    sum(part_count) "parts",
    max(part_count) "max_parts_per_partition"
FROM
(
    SELECT
        database,
        table,
        partition,
        count() "part_count"
    FROM system.parts
    WHERE active
    GROUP BY database, table, partition
) partitions
GROUP BY database, table
ORDER BY max_parts_per_partition DESC
LIMIT 10`

	selectMerges = `SELECT
    database,
    table,
    round(elapsed, 1) "elapsed",
    round(100 * progress, 1) "progress",
    is_mutation,
    partition_id,
{% if version_ge('20.3') -%}
    result_part_path,
    source_part_paths,
{% endif -%}
    num_parts,
    formatReadableSize(total_size_bytes_compressed) "total_size_compressed",
    formatReadableSize(bytes_read_uncompressed) "read_uncompressed",
    formatReadableSize(bytes_written_uncompressed) "written_uncompressed",
    columns_written,
    formatReadableSize(memory_usage) "memory_usage",
    thread_id
FROM system.merges`

	selectMutations = `SELECT
    database,
    table,
    mutation_id,
    command,
    create_time,
{% if version_ge('20.3') -%}
    parts_to_do_names,
{% endif -%}
    parts_to_do,
    is_done,
    latest_failed_part,
    latest_fail_time,
    latest_fail_reason
FROM system.mutations
WHERE NOT is_done
ORDER BY create_time DESC`

	selectRecentDataParts = `SELECT
    database,
    table,
    engine,
    partition_id,
    name,
{% if version_ge('20.3') -%}
    part_type,
{% endif -%}
    active,
    level,
{% if version_ge('20.3') -%}
    disk_name,
{% endif -%}
    path,
    marks,
    rows,
    bytes_on_disk,
    data_compressed_bytes,
    data_uncompressed_bytes,
    marks_bytes,
    modification_time,
    remove_time,
    refcount,
    is_frozen,
    min_date,
    max_date,
    min_time,
    max_time,
    min_block_number,
    max_block_number
FROM system.parts
WHERE modification_time > now() - INTERVAL 3 MINUTE
ORDER BY modification_time DESC`

	selectDetachedParts = `SELECT
    database,
    table,
    partition_id,
    name,
    disk,
    reason,
    min_block_number,
    max_block_number,
    level
FROM system.detached_parts`

	selectProcesses = `SELECT
    elapsed,
    query_id,
{% if normalize_queries -%}
    normalizeQuery(query) AS normalized_query,
{% else -%}
    query,
{% endif -%}
    is_cancelled,
    concat(toString(read_rows), ' rows / ', formatReadableSize(read_bytes)) AS read,
    concat(toString(written_rows), ' rows / ', formatReadableSize(written_bytes)) AS written,
    formatReadableSize(memory_usage) AS "memory usage",
    user,
    multiIf(empty(client_name), http_user_agent, concat(client_name, ' ', toString(client_version_major), '.', toString(client_version_minor), '.', toString(client_version_patch))) AS client,
{% if version_ge('21.3') -%}
    thread_ids,
{% endif -%}
{% if version_ge('21.8') -%}
    ProfileEvents,
    Settings
{% else -%}
    ProfileEvents.Names,
    ProfileEvents.Values,
    Settings.Names,
    Settings.Values
{% endif -%}
FROM system.processes
ORDER BY elapsed DESC`

	selectTopQueriesByDuration = `SELECT
    type,
    query_start_time,
    query_duration_ms,
    query_id,
    query_kind,
    is_initial_query,
{% if normalize_queries -%}
    normalizeQuery(query) AS normalized_query,
{% else -%}
    query,
{% endif -%}
    concat(toString(read_rows), ' rows / ', formatReadableSize(read_bytes)) AS read,
    concat(toString(written_rows), ' rows / ', formatReadableSize(written_bytes)) AS written,
    concat(toString(result_rows), ' rows / ', formatReadableSize(result_bytes)) AS result,
    formatReadableSize(memory_usage) AS "memory usage",
    exception,
    '\n' || stack_trace AS stack_trace,
    user,
    initial_user,
    multiIf(empty(client_name), http_user_agent, concat(client_name, ' ', toString(client_version_major), '.', toString(client_version_minor), '.', toString(client_version_patch))) AS client,
    client_hostname,
    databases,
    tables,
    columns,
    used_aggregate_functions,
    used_aggregate_function_combinators,
    used_database_engines,
    used_data_type_families,
    used_dictionaries,
    used_formats,
    used_functions,
    used_storages,
    used_table_functions,
    thread_ids,
    ProfileEvents,
    Settings
FROM system.query_log
WHERE type != 'QueryStart'
  AND event_date >= today() - 1
  AND event_time >= now() - INTERVAL 1 DAY
ORDER BY query_duration_ms DESC
LIMIT 10`

	selectTopQueriesByMemoryUsage = `SELECT
    type,
    query_start_time,
    query_duration_ms,
    query_id,
    query_kind,
    is_initial_query,
{% if normalize_queries -%}
    normalizeQuery(query) AS normalized_query,
{% else -%}
    query,
{% endif -%}
    concat(toString(read_rows), ' rows / ', formatReadableSize(read_bytes)) AS read,
    concat(toString(written_rows), ' rows / ', formatReadableSize(written_bytes)) AS written,
    concat(toString(result_rows), ' rows / ', formatReadableSize(result_bytes)) AS result,
    formatReadableSize(memory_usage) AS "memory usage",
    exception,
    '\n' || stack_trace AS stack_trace,
    user,
    initial_user,
    client_hostname,
    databases,
    tables,
    ProfileEvents,
    Settings
FROM system.query_log
WHERE type != 'QueryStart'
  AND event_date >= today() - 1
  AND event_time >= now() - INTERVAL 1 DAY
ORDER BY memory_usage DESC
LIMIT 10`

	selectFailedQueries = `SELECT
    type,
    query_start_time,
    query_duration_ms,
    query_id,
    query_kind,
    is_initial_query,
{% if normalize_queries -%}
    normalizeQuery(query) AS normalized_query,
{% else -%}
    query,
{% endif -%}
    concat(toString(read_rows), ' rows / ', formatReadableSize(read_bytes)) AS read,
    concat(toString(written_rows), ' rows / ', formatReadableSize(written_bytes)) AS written,
    concat(toString(result_rows), ' rows / ', formatReadableSize(result_bytes)) AS result,
    formatReadableSize(memory_usage) AS "memory usage",
    exception,
    '\n' || stack_trace AS stack_trace,
    user,
    initial_user,
    client_hostname,
    databases,
    tables
FROM system.query_log
WHERE type IN ('ExceptionBeforeStart', 'ExceptionWhileProcessing')
  AND event_date >= today() - 1
  AND event_time >= now() - INTERVAL 1 DAY
ORDER BY query_start_time DESC
LIMIT 10`

	selectStackTraces = `SELECT
    '\n' || arrayStringConcat(
       arrayMap(
           x,
           y -> concat(x, ': ', y),
           arrayMap(x -> addressToLine(x), trace),
           arrayMap(x -> demangle(addressToSymbol(x)), trace)),
       '\n') AS trace
FROM system.stack_trace
SETTINGS allow_introspection_functions = 1`

	selectCrashLog = `SELECT
    event_time,
    signal,
    thread_id,
    query_id,
    '\n' || arrayStringConcat(trace_full, '\n') AS trace,
    version
FROM system.crash_log
ORDER BY event_time DESC`
)

// DefaultSteps returns the collection table in execution order.
func DefaultSteps() []Step {
	return []Step{
		{Name: "Access configuration", Section: SectionAccess, Kind: KindQuery, Query: selectAccess, Format: client.FormatTSVRaw, MinVersion: "20.8"},
		{Name: "Quotas", Section: SectionAccess, Kind: KindQuery, Query: selectQuotaUsage, Format: client.FormatVertical, MinVersion: "20.8"},

		{Name: "Database engines", Section: SectionSchema, Kind: KindQuery, Query: selectDatabaseEngines},
		{Name: "Databases (top 10 by size)", Section: SectionSchema, Kind: KindQuery, Query: selectDatabases},
		{Name: "Table engines", Section: SectionSchema, Kind: KindQuery, Query: selectTableEngines},
		{Name: "Dictionaries", Section: SectionSchema, Kind: KindQuery, Query: selectDictionaries},

		{Name: "Replicated tables (top 10 by absolute delay)", Section: SectionReplication, Kind: KindQuery, Query: selectReplicas},
		{Name: "Replication queue (top 20 oldest tasks)", Section: SectionReplication, Kind: KindQuery, Query: selectReplicationQueue, Format: client.FormatVertical},
		{Name: "Replicated fetches", Section: SectionReplication, Kind: KindQuery, Query: selectReplicatedFetches, Format: client.FormatVertical, MinVersion: "21.3"},

		{Name: "Top 10 tables by max parts per partition", Kind: KindQuery, Query: selectPartsPerTable},
		{Name: "Merges in progress", Kind: KindQuery, Query: selectMerges, Format: client.FormatVertical},
		{Name: "Mutations in progress", Kind: KindQuery, Query: selectMutations, Format: client.FormatVertical},
		{Name: "Recent data parts (modification time within last 3 minutes)", Kind: KindQuery, Query: selectRecentDataParts, Format: client.FormatVertical},

		{Name: "system.detached_parts", Section: SectionDetached, Kind: KindQuery, Query: selectDetachedParts},
		{Name: "Disk space usage", Section: SectionDetached, Kind: KindCommand,
			Command: "du -sh -L -c {{ data_path }}data/*/*/detached/* | sort -rsh"},

		{Name: "Queries in progress (process list)", Section: SectionQueries, Kind: KindQuery, Query: selectProcesses, Format: client.FormatVertical},
		{Name: "Top 10 queries by duration", Section: SectionQueries, Kind: KindQuery, Query: selectTopQueriesByDuration, Format: client.FormatVertical},
		{Name: "Top 10 queries by memory usage", Section: SectionQueries, Kind: KindQuery, Query: selectTopQueriesByMemoryUsage, Format: client.FormatVertical},
		{Name: "Last 10 failed queries", Section: SectionQueries, Kind: KindQuery, Query: selectFailedQueries, Format: client.FormatVertical},

		{Name: "Stack traces", Kind: KindQuery, Query: selectStackTraces, Format: client.FormatVertical},
		{Name: "Crash log", Kind: KindQuery, Query: selectCrashLog, Format: client.FormatVertical, RequiresTable: CrashLogTable},

		{Name: "Unit properties", Section: SectionService, Kind: KindUnit, Unit: defaults.ServiceUnit},

		{Name: "Kernel", Section: SectionHost, Kind: KindCommand, Command: "uname -a"},
		{Name: "Memory", Section: SectionHost, Kind: KindCommand, Command: "free -h"},
		{Name: "Disk usage", Section: SectionHost, Kind: KindCommand, Command: "df -h"},
		{Name: "Top processes by memory", Section: SectionHost, Kind: KindCommand,
			Command: "ps -eo pid,user,%cpu,%mem,rss,etime,comm --sort=-rss | head -n 11"},

		{Name: "Error log (last 100 lines)", Section: SectionLogs, Kind: KindCommand, Command: "tail -n 100 {{ error_log }}"},
		{Name: "Most frequent errors", Section: SectionLogs, Kind: KindCommand,
			Command: "grep -o 'DB::Exception: [^(]*' {{ error_log }} | sort | uniq -c | sort -rn | head -n 10"},
	}
}
