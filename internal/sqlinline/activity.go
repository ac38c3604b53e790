package sqlinline

const QEnsureActivityTable = `--sql 2c9f4e0a-5b1d-4d8e-9a6f-3e7b1c2d4f50
create table if not exists activity_log (
    id bigserial primary key,
    kind text not null,
    tool text not null,
    mime text not null default '',
    bytes bigint not null default 0,
    remote_url text not null default '',
    created_at timestamptz not null default now()
);
`

const QEnsureIntegrationTokensTable = `--sql 7b3e5d21-9c4a-4f6e-8d2b-1a0c9e8f7d63
create table if not exists integration_tokens (
    provider text primary key,
    token text not null,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
`

const QInsertActivity = `--sql d59b6941-7867-4d5d-8b3f-1f4a1d9182af
insert into activity_log (kind, tool, mime, bytes, remote_url, created_at)
values ($1::text, $2::text, $3::text, $4::bigint, $5::text, $6::timestamptz);
`

const QActivitySummary = `--sql 5e1a10af-829f-4e1d-9f62-9d725d543b48
select
  count(*) filter (where kind = 'upload') as uploads,
  count(*) filter (where kind = 'export') as exports,
  count(*) filter (where kind = 'export' and created_at >= $1::timestamptz) as exports_since
from activity_log;
`
