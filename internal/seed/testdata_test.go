package seed

const riserFixture = `
deployments:
  - key: d1
    mode: diving
    sub_type: AIR
    name: Riser survey
    number: D-001
    job_pack_id: jp-7
    structure_id: riser-a
    created_at: 2024-05-01T08:00:00Z
    movements:
      - code: LEAVING_SURFACE
        time: 2024-05-01T09:00:00Z
      - code: AT_WORKSITE
        time: 2024-05-01T09:05:00Z
        remark: good vis
    tapes:
      - key: t1
        number: VT-0001
        events:
          - verb: start
            time: 2024-05-01T09:06:00Z
          - verb: pause
            time: 2024-05-01T09:16:00Z
          - verb: mark
            time: 2024-05-01T09:10:00Z
            inspection: i1
inspections:
  - key: i1
    id: insp-1
    job_pack_id: jp-7
    structure_id: riser-a
    mode: DIVING
    deployment: d1
    tape: t1
    date: 2024-05-01
    time: "09:10:00"
    anomaly: true
    description: coating damage
  - job_pack_id: jp-7
    structure_id: riser-a
    mode: DIVING
    deployment: legacy-dep
    tape: legacy-tape
    date: 2023-11-02
    time: "14:00:00"
`
